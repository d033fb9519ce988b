package ir

// Builder constructs a Method's CFG programmatically. It exists because
// excludes source/bytecode parsing from the core; the builder is the
// in-process way of obtaining a *Method for unit tests, mirroring the
// teacher's own "create Program, create Function, append BasicBlocks,
// emit Instructions" idiom (ssa/lift.go, ssa/print.go) and the synthetic
// CFG builders used for data-flow testing elsewhere in the retrieval
// pack (other_examples/77767e38_godoctor-godoctor__extras-cfg-df.go.go;
// other_examples/52dd1492_uber-go-nilaway__assertion-function-
// preprocess-cfg.go.go).
type Builder struct {
	m   *Method
	cur *BasicBlock
}

// NewMethodBuilder starts building a method. Call NewBlock to obtain
// the entry block before emitting any statements.
func NewMethodBuilder(class, name, subsig string, params []*Type, ret *Type, static bool) *Builder {
	m := &Method{
		ClassName:  class,
		Name:       name,
		Subsig:     subsig,
		Signature:  params,
		ReturnType: ret,
		IsStatic:   static,
	}
	return &Builder{m: m}
}

// Method returns the method under construction; call Finish first.
func (b *Builder) Method() *Method { return b.m }

// NewVar declares a fresh local of type t and returns it.
func (b *Builder) NewVar(name string, t *Type) *Var {
	v := &Var{name: name, typ: t, method: b.m, index: b.m.nextVarIndex}
	b.m.nextVarIndex++
	b.m.Locals = append(b.m.Locals, v)
	return v
}

// This declares the method's receiver variable. Only valid when the
// method is not static.
func (b *Builder) This(className string) *Var {
	v := b.NewVar("this", RefType(className))
	b.m.This = v
	return v
}

// Param declares the next formal parameter.
func (b *Builder) Param(name string, t *Type) *Var {
	v := b.NewVar(name, t)
	b.m.Params = append(b.m.Params, v)
	return v
}

// NewBlock appends and returns a fresh empty block; the first call
// becomes the method's entry block.
func (b *Builder) NewBlock() *BasicBlock {
	blk := &BasicBlock{Index: len(b.m.Blocks)}
	b.m.Blocks = append(b.m.Blocks, blk)
	if b.m.Entry == nil {
		b.m.Entry = blk
	}
	b.cur = blk
	return blk
}

// SetCurrent redirects subsequent Emit calls to blk.
func (b *Builder) SetCurrent(blk *BasicBlock) { b.cur = blk }

func (b *Builder) emit(s Stmt) {
	b.cur.Stmts = append(b.cur.Stmts, s)
}

func (b *Builder) nextIdx() int {
	i := b.m.nextStmtIndex
	b.m.nextStmtIndex++
	return i
}

// Jump records a fall-through/unconditional edge cur -> target.
func (b *Builder) Jump(target *BasicBlock) {
	addEdge(b.cur, target)
}

// IfEdges records the If statement's two successor edges, classified so
// the dead-code detector can tell a taken branch from a fall-through.
func (b *Builder) IfEdges(trueTarget, falseTarget *BasicBlock) {
	addEdge(b.cur, trueTarget)
	addEdge(b.cur, falseTarget)
	b.cur.IfTrue = trueTarget
	b.cur.IfFalse = falseTarget
}

// SwitchEdges records a Switch statement's case and default edges.
func (b *Builder) SwitchEdges(cases []SwitchCase, def *BasicBlock) {
	if b.cur.SwitchEdges == nil {
		b.cur.SwitchEdges = make(map[int32]*BasicBlock)
	}
	for _, c := range cases {
		addEdge(b.cur, c.Target)
		b.cur.SwitchEdges[c.Value] = c.Target
	}
	addEdge(b.cur, def)
	b.cur.SwitchDefault = def
}

func addEdge(from, to *BasicBlock) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}

// --- statement constructors ---

func (b *Builder) New(lv *Var, class *Type) *New {
	s := &New{stmtBase{b.nextIdx()}, lv, class}
	b.emit(s)
	return s
}

func (b *Builder) Copy(lv, rhs *Var) *Copy {
	s := &Copy{stmtBase{b.nextIdx()}, lv, rhs}
	b.emit(s)
	return s
}

func (b *Builder) LoadField(lv, base *Var, f *Field) *LoadField {
	s := &LoadField{stmtBase{b.nextIdx()}, lv, base, f}
	b.emit(s)
	return s
}

func (b *Builder) StoreField(base *Var, f *Field, rhs *Var) *StoreField {
	s := &StoreField{stmtBase{b.nextIdx()}, base, f, rhs}
	b.emit(s)
	return s
}

func (b *Builder) LoadArray(lv, base, index *Var) *LoadArray {
	s := &LoadArray{stmtBase{b.nextIdx()}, lv, base, index}
	b.emit(s)
	return s
}

func (b *Builder) StoreArray(base, index, rhs *Var) *StoreArray {
	s := &StoreArray{stmtBase{b.nextIdx()}, base, index, rhs}
	b.emit(s)
	return s
}

func (b *Builder) InvokeStmt(lv *Var, kind CallKind, ref MethodRef, recv *Var, args []*Var) *Invoke {
	s := &Invoke{stmtBase{b.nextIdx()}, lv, kind, ref, recv, args}
	b.emit(s)
	return s
}

func (b *Builder) IfStmt(cond RValue) *If {
	s := &If{stmtBase{b.nextIdx()}, cond}
	b.emit(s)
	return s
}

func (b *Builder) SwitchStmt(v *Var, cases []SwitchCase, def *BasicBlock) *Switch {
	s := &Switch{stmtBase{b.nextIdx()}, v, cases, def}
	b.emit(s)
	b.SwitchEdges(cases, def)
	return s
}

func (b *Builder) ReturnStmt(results ...*Var) *Return {
	s := &Return{stmtBase{b.nextIdx()}, results}
	b.emit(s)
	return s
}

func (b *Builder) Assign(lv *Var, rhs RValue) *AssignStmt {
	s := &AssignStmt{stmtBase{b.nextIdx()}, lv, rhs}
	b.emit(s)
	return s
}

func (b *Builder) OtherStmt(label string) *Other {
	s := &Other{stmtBase{b.nextIdx()}, label}
	b.emit(s)
	return s
}

// Finish attaches a synthetic exit block reachable from every block
// ending in Return and from every other block with no successors. The
// exit block carries no statements, so dead-code detection
// never has anything to report dead there.
func (b *Builder) Finish() *Method {
	exit := &BasicBlock{Index: len(b.m.Blocks)}
	b.m.Blocks = append(b.m.Blocks, exit)
	b.m.Exit = exit
	for _, blk := range b.m.Blocks {
		if blk == exit {
			continue
		}
		if len(blk.Stmts) > 0 {
			if _, ok := blk.Stmts[len(blk.Stmts)-1].(*Return); ok {
				addEdge(blk, exit)
				continue
			}
		}
		if len(blk.Succs) == 0 {
			addEdge(blk, exit)
		}
	}
	return b.m
}
