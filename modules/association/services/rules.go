package services

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

var ruleProgramCache sync.Map

var newRuleCELEnv = func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("members", cel.ListType(cel.StringType)),
		cel.Variable("primary", cel.StringType),
		cel.Variable("options", cel.ListType(cel.StringType)),
	)
}

func loadOrCompileRule(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("expression required")
	}
	if cached, ok := ruleProgramCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	env, err := newRuleCELEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.New("expression output type mismatch")
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	ruleProgramCache.Store(expr, program)
	return program, nil
}

func evalRule(program cel.Program, members []string, primary string, options []string) (bool, error) {
	out, _, err := program.Eval(map[string]any{
		"members": members,
		"primary": primary,
		"options": options,
	})
	if err != nil {
		return false, err
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, errors.New("expression did not evaluate to bool")
	}
	return v, nil
}
