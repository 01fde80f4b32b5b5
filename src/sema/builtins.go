package sema

import "cplusc/src/ast"

// builtin describes one runtime support function to be registered in the global
// scope.
type builtin struct {
	name     string
	params   []ParamSig
	ret      ast.TypeKind
	retLevel int
}

func p(t ast.TypeKind, level int) ParamSig { return ParamSig{Type: t, PointerLevel: level} }

var builtins = []builtin{
	{"__cplus_input_", nil, ast.String, 0},
	{"__cplus_to_int_", []ParamSig{p(ast.String, 0)}, ast.Int, 0},
	{"__cplus_to_float_", []ParamSig{p(ast.String, 0)}, ast.Float, 0},
	{"__cplus_int_to_string_", []ParamSig{p(ast.Int, 0)}, ast.String, 0},
	{"__cplus_float_to_string_", []ParamSig{p(ast.Float, 0)}, ast.String, 0},
	{"__cplus_print_", []ParamSig{p(ast.String, 0)}, ast.Void, 0},
	{"__cplus_str_concat", []ParamSig{p(ast.String, 0), p(ast.String, 0)}, ast.String, 0},
	{"__cplus_strcmp_", []ParamSig{p(ast.String, 0), p(ast.String, 0)}, ast.Boolean, 0},
	{"__cplus_substr_", []ParamSig{p(ast.String, 0), p(ast.Int, 0), p(ast.Int, 0)}, ast.String, 0},
	{"__cplus_char_at_", []ParamSig{p(ast.String, 0), p(ast.Int, 0)}, ast.Char, 0},
	{"__cplus_memcpy_", []ParamSig{p(ast.Void, 1), p(ast.Void, 1), p(ast.Int, 0)}, ast.Void, 0},
	{"__cplus_memset_", []ParamSig{p(ast.Void, 1), p(ast.Int, 0), p(ast.Int, 0)}, ast.Void, 0},
	{"__cplus_realloc_", []ParamSig{p(ast.Void, 1), p(ast.Int, 0)}, ast.Void, 1},
	{"__cplus_random_", nil, ast.Int, 0},
	{"__cplus_seed_", []ParamSig{p(ast.Int, 0)}, ast.Void, 0},
	{"__cplus_sqrt_", []ParamSig{p(ast.Float, 0)}, ast.Float, 0},
	{"__cplus_pow_", []ParamSig{p(ast.Float, 0), p(ast.Float, 0)}, ast.Float, 0},
	{"__cplus_time_", nil, ast.Int, 0},
	{"__cplus_system_", []ParamSig{p(ast.String, 0)}, ast.Int, 0},
	{"__cplus_panic_", []ParamSig{p(ast.String, 0)}, ast.Void, 0},
}

// registerBuiltins declares every runtime support function in global.
func registerBuiltins(global *Scope) {
	for _, b := range builtins {
		global.Declare(&Symbol{
			Name:               b.name,
			Kind:               Function,
			Params:             b.params,
			ReturnType:         b.ret,
			ReturnPointerLevel: b.retLevel,
		})
	}
}
