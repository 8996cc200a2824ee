package compiler

import (
	"fmt"

	"github.com/wudi/tarr/instruction"
)

// Registry stands in for the source's dotted-name reflection: instead
// of resolving "mypackage.rules.double" from a string at compile time,
// the host process registers its rule/branch/branch_rule functions
// under a name once, up front, and descriptions reference them by that
// name. A Registry is not required to use the construction primitives
// directly; it exists for hosts that want to build a description from
// external configuration (a YAML or CLI-supplied program name list)
// rather than Go source.
type Registry struct {
	rules       map[string]instruction.RuleFunc
	branches    map[string]instruction.BranchFunc
	branchRules map[string]instruction.BranchRuleFunc
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:       map[string]instruction.RuleFunc{},
		branches:    map[string]instruction.BranchFunc{},
		branchRules: map[string]instruction.BranchRuleFunc{},
	}
}

// RegisterRule names fn so Rule(name) below can find it.
func (r *Registry) RegisterRule(name string, fn instruction.RuleFunc) *Registry {
	r.rules[name] = fn
	return r
}

// RegisterBranch names fn for Branch(name) / If(name) / Elif(name).
func (r *Registry) RegisterBranch(name string, fn instruction.BranchFunc) *Registry {
	r.branches[name] = fn
	return r
}

// RegisterBranchRule names fn for BranchRule(name).
func (r *Registry) RegisterBranchRule(name string, fn instruction.BranchRuleFunc) *Registry {
	r.branchRules[name] = fn
	return r
}

// Rule looks up a registered rule by name and returns a construction
// Node for it, or an error if nothing was registered under that name.
func (r *Registry) Rule(name string) (Node, error) {
	fn, ok := r.rules[name]
	if !ok {
		return nil, fmt.Errorf("compiler: registry has no rule named %q", name)
	}
	return Rule(name, fn), nil
}

// Branch looks up a registered branch by name and returns a
// construction Node for it.
func (r *Registry) Branch(name string) (Node, error) {
	fn, ok := r.branches[name]
	if !ok {
		return nil, fmt.Errorf("compiler: registry has no branch named %q", name)
	}
	return Branch(name, fn), nil
}

// BranchRule looks up a registered branch_rule by name and returns a
// construction Node for it.
func (r *Registry) BranchRule(name string) (Node, error) {
	fn, ok := r.branchRules[name]
	if !ok {
		return nil, fmt.Errorf("compiler: registry has no branch_rule named %q", name)
	}
	return BranchRule(name, fn), nil
}

// BranchFunc looks up a registered branch by name for use directly as
// an If/Elif condition, which takes a function rather than a Node.
func (r *Registry) BranchFunc(name string) (instruction.BranchFunc, error) {
	fn, ok := r.branches[name]
	if !ok {
		return nil, fmt.Errorf("compiler: registry has no branch named %q", name)
	}
	return fn, nil
}
