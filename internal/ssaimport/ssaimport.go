// Package ssaimport is the sole importer of golang.org/x/tools/go/ssa
// in this module: it lowers a real Go package's SSA form into
// internal/ir so the CLI (cmd/staticanalyzer) can run the analyses in
// this module against an actual program instead of a builder-assembled
// fixture. None of the analysis packages import go/ssa, go/packages or
// go/types directly; this package exists precisely to keep that
// boundary sharp by being the only place such an import is allowed.
//
// The lowering is intentionally partial: it covers the SSA
// instructions with a direct internal/ir counterpart (calls, binary
// ops, allocations, branches, returns) and lowers anything else,
// including field and array addressing, loads and stores, to an
// ir.Other no-op whose label names what was dropped; no log record is
// written for it. It is a convenience path for exercising the analyses on
// real code, not a general Go-to-IR compiler.
package ssaimport

import (
	"fmt"
	"go/constant"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/lmysuzi/static-software-analysis/internal/diag"
	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// Program is the lowered result: every class the type hierarchy needs
// plus the lowered method bodies, and the entry method the CLI asked
// to start analysis from.
type Program struct {
	Classes []*hierarchy.Class
	Entry   *ir.Method
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedImports |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax | packages.NeedDeps

// Load builds the SSA form of the Go package at pattern (as accepted
// by go/packages) and lowers it into a Program, using entryFunc (a bare
// function name, matched against any lowered method's Name) to pick the
// analysis entry point.
func Load(pattern, entryFunc string, log *diag.Logger) (*Program, error) {
	if log == nil {
		log = diag.Discard
	}
	cfg := &packages.Config{Mode: loadMode, Fset: token.NewFileSet()}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("ssaimport: loading %s: %w", pattern, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("ssaimport: %s failed to type-check", pattern)
	}

	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.SanityCheckFunctions)
	prog.Build()

	l := &lowerer{prog: prog, log: log, classes: map[string]*hierarchy.Class{}}
	for _, p := range ssaPkgs {
		if p == nil {
			continue
		}
		l.lowerPackage(p)
	}

	var entry *ir.Method
	for _, c := range l.classes {
		for _, m := range c.Methods {
			if m.Name == entryFunc {
				entry = m
			}
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("ssaimport: entry function %q not found in %s", entryFunc, pattern)
	}

	out := make([]*hierarchy.Class, 0, len(l.classes))
	for _, c := range l.classes {
		out = append(out, c)
	}
	return &Program{Classes: out, Entry: entry}, nil
}

type lowerer struct {
	prog    *ssa.Program
	log     *diag.Logger
	classes map[string]*hierarchy.Class
	vars    map[ssa.Value]*ir.Var // per-function, reset by lowerFunction
	b       *ir.Builder            // per-function, reset by lowerFunction
}

// lowerPackage lowers every named type's methods, plus free functions,
// as methods of a single synthetic class named after the package path
// — this module's IR has no free-function concept.
func (l *lowerer) lowerPackage(p *ssa.Package) {
	className := p.Pkg.Path()
	class := l.classFor(className)

	for _, member := range p.Members {
		switch m := member.(type) {
		case *ssa.Function:
			if fn := l.lowerFunction(className, m); fn != nil {
				class.Methods[fn.Subsig] = fn
			}
		case *ssa.Type:
			l.lowerNamedType(m.Type())
		}
	}
}

func (l *lowerer) classFor(name string) *hierarchy.Class {
	c, ok := l.classes[name]
	if !ok {
		c = &hierarchy.Class{Name: name, Methods: map[string]*ir.Method{}}
		l.classes[name] = c
	}
	return c
}

// lowerNamedType registers a class/interface declaration (for CHA) for
// a named Go type, without lowering method bodies here — those are
// lowered from their *ssa.Function when encountered as a Package member
// or a method set entry.
func (l *lowerer) lowerNamedType(t types.Type) {
	named, ok := t.(*types.Named)
	if !ok {
		return
	}
	name := named.Obj().Pkg().Path() + "." + named.Obj().Name()
	class := l.classFor(name)
	if iface, ok := named.Underlying().(*types.Interface); ok {
		class.IsInterface = true
		for i := 0; i < iface.NumEmbeddeds(); i++ {
			class.Interfaces = append(class.Interfaces, iface.EmbeddedType(i).String())
		}
		return
	}
	if st, ok := named.Underlying().(*types.Struct); ok && st != nil {
		// No explicit embedded-field-as-superclass concept in this IR's
		// class model; embedded structs are not promoted to Super here.
		// Full Go type-system fidelity in the lowering path is out of
		// scope.
		_ = st
	}
}

func (l *lowerer) lowerFunction(className string, fn *ssa.Function) *ir.Method {
	if fn.Blocks == nil {
		l.log.Warnf("ssaimport", "skipping external/unbuilt function %s", fn.String())
		return nil
	}
	sig := fn.Signature
	params := make([]*ir.Type, 0, sig.Params().Len())
	for i := 0; i < sig.Params().Len(); i++ {
		params = append(params, lowerType(sig.Params().At(i).Type()))
	}
	ret := ir.TypeVoid
	if sig.Results().Len() > 0 {
		ret = lowerType(sig.Results().At(0).Type())
	}
	subsig := fn.Name() + signatureSuffix(params)

	b := ir.NewMethodBuilder(className, fn.Name(), subsig, params, ret, sig.Recv() == nil)
	l.vars = map[ssa.Value]*ir.Var{}
	l.b = b

	if sig.Recv() != nil {
		l.vars[fn.Params[0]] = b.This(className)
		for i, p := range fn.Params[1:] {
			l.vars[p] = b.Param(p.Name(), params[i])
		}
	} else {
		for i, p := range fn.Params {
			l.vars[p] = b.Param(p.Name(), params[i])
		}
	}

	blocks := make(map[*ssa.BasicBlock]*ir.BasicBlock, len(fn.Blocks))
	for range fn.Blocks {
		blocks[fn.Blocks[len(blocks)]] = b.NewBlock()
	}
	for _, sb := range fn.Blocks {
		b.SetCurrent(blocks[sb])
		l.lowerBlock(b, sb, blocks)
	}

	return b.Finish()
}

func (l *lowerer) lowerBlock(b *ir.Builder, sb *ssa.BasicBlock, blocks map[*ssa.BasicBlock]*ir.BasicBlock) {
	for _, instr := range sb.Instrs {
		l.lowerInstr(b, instr, blocks)
	}
}

func (l *lowerer) lowerInstr(b *ir.Builder, instr ssa.Instruction, blocks map[*ssa.BasicBlock]*ir.BasicBlock) {
	switch v := instr.(type) {
	case *ssa.Alloc:
		t := lowerType(v.Type())
		lv := l.newVar(v, t)
		b.New(lv, t)

	case *ssa.BinOp:
		op, ok := lowerBinOp(v.Op)
		if !ok {
			b.OtherStmt("unsupported binop " + v.Op.String())
			return
		}
		lv := l.newVar(v, lowerType(v.Type()))
		b.Assign(lv, ir.BinaryExp{Op: op, A: l.operand(v.X), B: l.operand(v.Y)})

	case *ssa.Call:
		l.lowerCall(b, v)

	case *ssa.Return:
		var results []*ir.Var
		for _, r := range v.Results {
			results = append(results, l.operandVar(b, r))
		}
		b.ReturnStmt(results...)

	case *ssa.If:
		cond := l.operand(v.Cond)
		b.IfStmt(cond)
		succs := v.Block().Succs
		if len(succs) == 2 {
			b.IfEdges(blocks[succs[0]], blocks[succs[1]])
		}

	case *ssa.Jump:
		if succs := v.Block().Succs; len(succs) == 1 {
			b.Jump(blocks[succs[0]])
		}

	case *ssa.FieldAddr:
		// Field address computation has no direct statement-level
		// counterpart; the subsequent Store/UnOp(*FieldAddr) consumes it
		// via l.vars, which this method leaves unmapped — unsupported
		// field access patterns degrade to Other no-ops (documented
		// lowering-path limitation, not a core-analysis limitation).
		b.OtherStmt("field addr (unsupported in this lowering path)")

	default:
		b.OtherStmt(fmt.Sprintf("unsupported ssa instruction %T", instr))
	}
}

func (l *lowerer) lowerCall(b *ir.Builder, v *ssa.Call) {
	common := v.Common()
	var args []*ir.Var
	for _, a := range common.Args {
		args = append(args, l.operandVar(b, a))
	}
	kind := ir.CallStatic
	var recv *ir.Var
	declClass := ""
	name := ""
	if common.IsInvoke() {
		kind = ir.CallInterface
		recv = l.operandVar(b, common.Value)
		declClass = common.Value.Type().String()
		name = common.Method.Name()
	} else if fn, ok := common.Value.(*ssa.Function); ok {
		if fn.Signature.Recv() != nil {
			kind = ir.CallVirtual
			recv = l.operandVar(b, common.Args[0])
			args = args[1:]
		}
		declClass = fn.Pkg.Pkg.Path()
		name = fn.Name()
	} else {
		b.OtherStmt("indirect call (unsupported in this lowering path)")
		return
	}

	var lv *ir.Var
	if _, isVoid := v.Type().Underlying().(*types.Tuple); !isVoid && v.Type().String() != "()" {
		lv = l.newVar(v, lowerType(v.Type()))
	}
	ref := ir.MethodRef{DeclClass: declClass, Subsig: name}
	b.InvokeStmt(lv, kind, ref, recv, args)
}

// operand resolves an ssa.Value to an RValue, handling literal
// constants directly and otherwise using a previously lowered Var; a
// value with neither becomes the literal 0.
func (l *lowerer) operand(v ssa.Value) ir.RValue {
	if c, ok := v.(*ssa.Const); ok && c.Value != nil {
		if iv, ok := constInt32(c); ok {
			return ir.IntLiteral{Value: iv}
		}
	}
	if iv, ok := l.vars[v]; ok {
		return ir.VarRef{V: iv}
	}
	return ir.IntLiteral{Value: 0}
}

// operandVar is like operand but always yields a Var, materializing a
// fresh one when none was lowered yet: bound by an Assign for int32
// constants, left unbound for any other operand.
func (l *lowerer) operandVar(b *ir.Builder, v ssa.Value) *ir.Var {
	if iv, ok := l.vars[v]; ok {
		return iv
	}
	t := lowerType(v.Type())
	nv := b.NewVar(fmt.Sprintf("t%p", v), t)
	if c, ok := v.(*ssa.Const); ok {
		if iv, ok := constInt32(c); ok {
			b.Assign(nv, ir.IntLiteral{Value: iv})
			l.vars[v] = nv
			return nv
		}
	}
	l.vars[v] = nv
	return nv
}

func (l *lowerer) newVar(v ssa.Value, t *ir.Type) *ir.Var {
	name := v.Name()
	if name == "" {
		name = fmt.Sprintf("t%p", v)
	}
	nv := l.b.NewVar(name, t)
	l.vars[v] = nv
	return nv
}

func constInt32(c *ssa.Const) (int32, bool) {
	if c.Value == nil || c.Value.Kind() != constant.Int {
		return 0, false
	}
	i, ok := constant.Int64Val(c.Value)
	if !ok {
		return 0, false
	}
	return int32(i), true
}

func lowerType(t types.Type) *ir.Type {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch u.Kind() {
		case types.Bool:
			return ir.TypeBoolean
		case types.Int8:
			return ir.TypeByte
		case types.Int16:
			return ir.TypeShort
		case types.Int32, types.Int, types.Uint, types.Uint32:
			return ir.TypeInt
		default:
			return ir.RefType(t.String())
		}
	case *types.Slice:
		return ir.ArrayOf(lowerType(u.Elem()))
	case *types.Array:
		return ir.ArrayOf(lowerType(u.Elem()))
	default:
		return ir.RefType(t.String())
	}
}

func lowerBinOp(op token.Token) (ir.BinOp, bool) {
	switch op {
	case token.ADD:
		return ir.OpAdd, true
	case token.SUB:
		return ir.OpSub, true
	case token.MUL:
		return ir.OpMul, true
	case token.QUO:
		return ir.OpDiv, true
	case token.REM:
		return ir.OpRem, true
	case token.EQL:
		return ir.OpEq, true
	case token.NEQ:
		return ir.OpNe, true
	case token.LSS:
		return ir.OpLt, true
	case token.GTR:
		return ir.OpGt, true
	case token.LEQ:
		return ir.OpLe, true
	case token.GEQ:
		return ir.OpGe, true
	case token.SHL:
		return ir.OpShl, true
	case token.SHR:
		return ir.OpShr, true
	case token.AND:
		return ir.OpAnd, true
	case token.OR:
		return ir.OpOr, true
	case token.XOR:
		return ir.OpXor, true
	default:
		return 0, false
	}
}

func signatureSuffix(params []*ir.Type) string {
	s := "("
	for i, p := range params {
		if i > 0 {
			s += ","
		}
		s += p.String()
	}
	return s + ")"
}
