package functions

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/udfsql/types"
	"github.com/rulego/udfsql/utils/cast"
)

// builtinExpr describes a built-in as an expr-lang expression over its
// parameters.
type builtinExpr struct {
	name        string
	source      string
	params      []Parameter
	ret         types.DataType
	description string
}

var builtinExprs = []builtinExpr{
	{"abs", "abs(x)", []Parameter{{"x", types.TypeInt}}, types.TypeInt, "绝对值"},
	{"upper", "upper(s)", []Parameter{{"s", types.TypeText}}, types.TypeText, "转大写"},
	{"lower", "lower(s)", []Parameter{{"s", types.TypeText}}, types.TypeText, "转小写"},
	{"length", "len(s)", []Parameter{{"s", types.TypeText}}, types.TypeInt, "字符串长度（字节）"},
	{"trim", "trim(s)", []Parameter{{"s", types.TypeText}}, types.TypeText, "去除首尾空白"},
	{"concat", "a + b", []Parameter{{"a", types.TypeText}, {"b", types.TypeText}}, types.TypeText, "连接两个字符串"},
	{"greatest", "max(a, b)", []Parameter{{"a", types.TypeInt}, {"b", types.TypeInt}}, types.TypeInt, "两数中的较大值"},
	{"least", "min(a, b)", []Parameter{{"a", types.TypeInt}, {"b", types.TypeInt}}, types.TypeInt, "两数中的较小值"},
}

// RegisterBuiltins installs the built-in functions into r.
func RegisterBuiltins(r *Registry) error {
	for _, b := range builtinExprs {
		def, err := NewExprFunction(b.name, b.source, b.params, b.ret, b.description)
		if err != nil {
			return err
		}
		if _, err := r.Define(def); err != nil {
			return err
		}
	}
	return nil
}

// BuiltinNames returns the names installed by RegisterBuiltins.
func BuiltinNames() []string {
	names := make([]string, len(builtinExprs))
	for i, b := range builtinExprs {
		names[i] = b.name
	}
	return names
}

// NewExprFunction compiles an expr-lang expression into a native function.
// Parameters are visible to the expression by name. Any NULL argument makes
// the result NULL without running the program.
func NewExprFunction(name, source string, params []Parameter, ret types.DataType, description string) (*FunctionDef, error) {
	env := make(map[string]any, len(params))
	for _, p := range params {
		env[p.Name] = zeroOf(p.Type)
	}
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("compile builtin %s: %w", name, err)
	}

	def := &FunctionDef{
		Name:        NormalizeName(name),
		Type:        TypeBuiltin,
		Params:      params,
		ReturnType:  ret,
		Source:      source,
		Description: description,
	}
	def.Native = func(args []types.Value) (types.Value, error) {
		return runProgram(program, params, ret, args)
	}
	return def, nil
}

func runProgram(program *vm.Program, params []Parameter, ret types.DataType, args []types.Value) (types.Value, error) {
	env := make(map[string]any, len(params))
	for i, p := range params {
		if args[i].IsNull() {
			return types.Null, nil
		}
		env[p.Name] = args[i].Any()
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return types.Null, err
	}
	return cast.ToValueAs(out, ret)
}

func zeroOf(t types.DataType) any {
	switch t {
	case types.TypeInt:
		return int64(0)
	case types.TypeText:
		return ""
	case types.TypeBool:
		return false
	default:
		return nil
	}
}
