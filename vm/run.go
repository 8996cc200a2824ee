package vm

import (
	"time"

	"github.com/wudi/tarr/instruction"
)

// Run walks the instruction graph for a single data item starting at
// p.EntryPoint (0 unless the program has sub-programs defined ahead of
// main) with flag true, following edges until it reaches a return
// instruction. It mutates item's payload in place as each instruction's
// body runs and folds per-instruction statistics into p.Statistics as
// it goes.
//
// A panicking instruction body is recovered and reported as a
// *RuntimeError; the instruction's item_count is counted but neither
// success_count nor failure_count is, and the run stops there.
func (p *Program) Run(item DataItem) (flag bool, err error) {
	flag = true
	ip := p.EntryPoint

	for {
		ins := &p.Instructions[ip]

		if ins.Kind == instruction.KindReturn {
			_, flag, _ = ins.Run(flag, item.Payload())
			return flag, nil
		}

		stat := &p.Statistics[ip]
		stat.ItemCount++

		start := time.Now()
		nextIP, newFlag, newPayload, runErr := runGuarded(ins, flag, item.Payload())
		stat.RunTime += time.Since(start)

		if runErr != nil {
			return false, runErr
		}

		item.SetPayload(newPayload)
		if newFlag {
			stat.SuccessCount++
		} else {
			stat.FailureCount++
		}
		flag = newFlag
		ip = nextIP
	}
}

func runGuarded(ins *instruction.Instruction, flag bool, payload any) (nextIP int, newFlag bool, newPayload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{Index: ins.Index, InstructionName: ins.Name, Cause: causeToError(r)}
		}
	}()
	nextIP, newFlag, newPayload = ins.Run(flag, payload)
	return
}
