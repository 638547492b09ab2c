package cao

import (
	"math"
	"sort"

	"github.com/maruel/natural"

	"github.com/cao-lang/cao/internal/runeio"
)

// builtinHandlers backs every name in coreLibrary except "see" (handled by
// execTokens' lookahead, not the stack). Each handler follows the same
// discipline: validate depth and value kinds by peeking before mutating
// vm.Stack, so a failing builtin leaves the stack untouched and its
// operands in place.
var builtinHandlers map[string]func(*VM) error

func init() {
	builtinHandlers = map[string]func(*VM) error{
		"dup": biDup, "drop": biDrop, "swap": biSwap, "over": biOver,
		"rot": biRot, "nip": biNip, "tuck": biTuck,

		"+": biAdd, "-": biSub, "*": biMul, "/": biDiv, "mod": biMod,
		"1+": biInc, "1-": biDec,

		"=": biEq, "<>": biNeq, "<": biLt, ">": biGt, "<=": biLe, ">=": biGe,
		"not": biNot, "and": biAnd, "or": biOr,

		"if": biIf, "when": biWhen, "unless": biUnless, "times": biTimes, "call": biCall,

		"type-of": biTypeOf, "is-type?": biIsType, "cast": biCast,

		".": biDot, ".s": biDotS, "words": biWords, "help": biHelp,
		"--ordinal": biOrdinal, "clear": biClear, "depth": biDepth, "quit": biQuit,

		"Some": biSome, "None": biNone, "Ok": biOk, "Err": biErr, "list": biList,
	}
}

func (vm *VM) peek(n int) []Value {
	return vm.Stack[len(vm.Stack)-n:]
}

func biDup(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "dup"}
	}
	vm.Stack = append(vm.Stack, vm.peek(1)[0])
	return nil
}

func biDrop(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "drop"}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	return nil
}

func biSwap(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "swap"}
	}
	n := len(vm.Stack)
	vm.Stack[n-1], vm.Stack[n-2] = vm.Stack[n-2], vm.Stack[n-1]
	return nil
}

func biOver(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "over"}
	}
	vm.Stack = append(vm.Stack, vm.Stack[len(vm.Stack)-2])
	return nil
}

func biRot(vm *VM) error {
	if len(vm.Stack) < 3 {
		return &StackError{Op: "rot"}
	}
	n := len(vm.Stack)
	a, b, c := vm.Stack[n-3], vm.Stack[n-2], vm.Stack[n-1]
	vm.Stack[n-3], vm.Stack[n-2], vm.Stack[n-1] = b, c, a
	return nil
}

func biNip(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "nip"}
	}
	n := len(vm.Stack)
	vm.Stack[n-2] = vm.Stack[n-1]
	vm.Stack = vm.Stack[:n-1]
	return nil
}

func biTuck(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "tuck"}
	}
	n := len(vm.Stack)
	a, b := vm.Stack[n-2], vm.Stack[n-1]
	vm.Stack[n-2] = b
	vm.Stack = append(vm.Stack, a, b)
	return nil
}

func wantNat2(vm *VM, op string) (a, b Value, err error) {
	if len(vm.Stack) < 2 {
		return Value{}, Value{}, &StackError{Op: op}
	}
	two := vm.peek(2)
	a, b = two[0], two[1]
	if a.Kind != KNat || b.Kind != KNat {
		return Value{}, Value{}, &TypeMismatchError{Op: op, Expected: "Nat Nat", Found: a.TypeOf().String() + " " + b.TypeOf().String()}
	}
	return a, b, nil
}

func biAdd(vm *VM) error {
	a, b, err := wantNat2(vm, "+")
	if err != nil {
		return err
	}
	sum := a.Nat + b.Nat
	if sum < a.Nat {
		return &ArithmeticError{Message: "overflow"}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, NatValue(sum))
	return nil
}

func biSub(vm *VM) error {
	a, b, err := wantNat2(vm, "-")
	if err != nil {
		return err
	}
	if a.Nat < b.Nat {
		return &InvalidOperationError{Message: "subtraction would underflow"}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, NatValue(a.Nat-b.Nat))
	return nil
}

func biMul(vm *VM) error {
	a, b, err := wantNat2(vm, "*")
	if err != nil {
		return err
	}
	if a.Nat != 0 && b.Nat > math.MaxUint64/a.Nat {
		return &ArithmeticError{Message: "overflow"}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, NatValue(a.Nat*b.Nat))
	return nil
}

func biDiv(vm *VM) error {
	a, b, err := wantNat2(vm, "/")
	if err != nil {
		return err
	}
	if b.Nat == 0 {
		return &RuntimeError{Message: "Division by zero"}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, NatValue(a.Nat/b.Nat))
	return nil
}

func biMod(vm *VM) error {
	a, b, err := wantNat2(vm, "mod")
	if err != nil {
		return err
	}
	if b.Nat == 0 {
		return &RuntimeError{Message: "Modulo by zero"}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, NatValue(a.Nat%b.Nat))
	return nil
}

func biInc(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "1+"}
	}
	x := vm.peek(1)[0]
	if x.Kind != KNat {
		return &TypeMismatchError{Op: "1+", Expected: "Nat", Found: x.TypeOf().String()}
	}
	if x.Nat == math.MaxUint64 {
		return &ArithmeticError{Message: "overflow"}
	}
	vm.Stack[len(vm.Stack)-1] = NatValue(x.Nat + 1)
	return nil
}

func biDec(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "1-"}
	}
	x := vm.peek(1)[0]
	if x.Kind != KNat {
		return &TypeMismatchError{Op: "1-", Expected: "Nat", Found: x.TypeOf().String()}
	}
	if x.Nat == 0 {
		return nil
	}
	vm.Stack[len(vm.Stack)-1] = NatValue(x.Nat - 1)
	return nil
}

func biEq(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "="}
	}
	two := vm.peek(2)
	eq := two[0].Equal(two[1])
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, BoolValue(eq))
	return nil
}

func biNeq(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "<>"}
	}
	two := vm.peek(2)
	eq := two[0].Equal(two[1])
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, BoolValue(!eq))
	return nil
}

func natCompare(vm *VM, op string) (a, b Value, err error) {
	return wantNat2(vm, op)
}

func biLt(vm *VM) error { return natCompareOp(vm, "<", func(a, b uint64) bool { return a < b }) }
func biGt(vm *VM) error { return natCompareOp(vm, ">", func(a, b uint64) bool { return a > b }) }
func biLe(vm *VM) error { return natCompareOp(vm, "<=", func(a, b uint64) bool { return a <= b }) }
func biGe(vm *VM) error { return natCompareOp(vm, ">=", func(a, b uint64) bool { return a >= b }) }

func natCompareOp(vm *VM, op string, cmp func(a, b uint64) bool) error {
	a, b, err := natCompare(vm, op)
	if err != nil {
		return err
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, BoolValue(cmp(a.Nat, b.Nat)))
	return nil
}

func wantBool1(vm *VM, op string) (Value, error) {
	if len(vm.Stack) < 1 {
		return Value{}, &StackError{Op: op}
	}
	v := vm.peek(1)[0]
	if v.Kind != KBool {
		return Value{}, &TypeMismatchError{Op: op, Expected: "Bool", Found: v.TypeOf().String()}
	}
	return v, nil
}

func wantBool2(vm *VM, op string) (a, b Value, err error) {
	if len(vm.Stack) < 2 {
		return Value{}, Value{}, &StackError{Op: op}
	}
	two := vm.peek(2)
	if two[0].Kind != KBool || two[1].Kind != KBool {
		return Value{}, Value{}, &TypeMismatchError{Op: op, Expected: "Bool Bool", Found: two[0].TypeOf().String() + " " + two[1].TypeOf().String()}
	}
	return two[0], two[1], nil
}

func biNot(vm *VM) error {
	v, err := wantBool1(vm, "not")
	if err != nil {
		return err
	}
	vm.Stack[len(vm.Stack)-1] = BoolValue(!v.Bool)
	return nil
}

func biAnd(vm *VM) error {
	a, b, err := wantBool2(vm, "and")
	if err != nil {
		return err
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, BoolValue(a.Bool && b.Bool))
	return nil
}

func biOr(vm *VM) error {
	a, b, err := wantBool2(vm, "or")
	if err != nil {
		return err
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, BoolValue(a.Bool || b.Bool))
	return nil
}

func biIf(vm *VM) error {
	if len(vm.Stack) < 3 {
		return &StackError{Op: "if"}
	}
	three := vm.peek(3)
	cond, thenQ, elseQ := three[0], three[1], three[2]
	if cond.Kind != KBool || thenQ.Kind != KQuote || elseQ.Kind != KQuote {
		return &TypeMismatchError{Op: "if", Expected: "Bool Quote Quote", Found: cond.TypeOf().String() + " " + thenQ.TypeOf().String() + " " + elseQ.TypeOf().String()}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-3]
	if cond.Bool {
		return vm.execTokens(thenQ.Quote)
	}
	return vm.execTokens(elseQ.Quote)
}

func biWhen(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "when"}
	}
	two := vm.peek(2)
	cond, q := two[0], two[1]
	if cond.Kind != KBool || q.Kind != KQuote {
		return &TypeMismatchError{Op: "when", Expected: "Bool Quote", Found: cond.TypeOf().String() + " " + q.TypeOf().String()}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	if cond.Bool {
		return vm.execTokens(q.Quote)
	}
	return nil
}

func biUnless(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "unless"}
	}
	two := vm.peek(2)
	cond, q := two[0], two[1]
	if cond.Kind != KBool || q.Kind != KQuote {
		return &TypeMismatchError{Op: "unless", Expected: "Bool Quote", Found: cond.TypeOf().String() + " " + q.TypeOf().String()}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	if !cond.Bool {
		return vm.execTokens(q.Quote)
	}
	return nil
}

func biTimes(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "times"}
	}
	two := vm.peek(2)
	n, q := two[0], two[1]
	if n.Kind != KNat || q.Kind != KQuote {
		return &TypeMismatchError{Op: "times", Expected: "Nat Quote", Found: n.TypeOf().String() + " " + q.TypeOf().String()}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	for i := uint64(0); i < n.Nat; i++ {
		if err := vm.execTokens(q.Quote); err != nil {
			return err
		}
	}
	return nil
}

func biCall(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "call"}
	}
	q := vm.peek(1)[0]
	if q.Kind != KQuote {
		return &TypeMismatchError{Op: "call", Expected: "Quote", Found: q.TypeOf().String()}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	return vm.execTokens(q.Quote)
}

func biTypeOf(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "type-of"}
	}
	v := vm.peek(1)[0]
	vm.Stack[len(vm.Stack)-1] = StrValue(v.TypeOf().String())
	return nil
}

func biIsType(vm *VM) error {
	if len(vm.Stack) < 2 {
		return &StackError{Op: "is-type?"}
	}
	two := vm.peek(2)
	v, name := two[0], two[1]
	if name.Kind != KStr {
		return &TypeMismatchError{Op: "is-type?", Expected: "a Str", Found: v.TypeOf().String() + " " + name.TypeOf().String()}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-2]
	vm.Stack = append(vm.Stack, BoolValue(v.TypeOf().String() == name.Str))
	return nil
}

// biCast is an unsafe identity reinterpretation;
// this runtime never calls it from any builtin or installed core word.
func biCast(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "cast"}
	}
	return nil
}

func biDot(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "."}
	}
	v := vm.Stack[len(vm.Stack)-1]
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	vm.writeLine(Render(v))
	return nil
}

func biDotS(vm *VM) error {
	vm.writeLine(RenderStack(vm.Stack))
	return nil
}

func biWords(vm *VM) error {
	for _, g := range coreGroups() {
		var names []string
		for _, e := range coreLibrary {
			if e.Group == g {
				names = append(names, e.Name)
			}
		}
		vm.writeLine(g + ": " + joinWords(names))
	}
	var derived []string
	for name := range vm.Dictionary {
		derived = append(derived, name)
	}
	sort.Slice(derived, func(i, j int) bool { return natural.Less(derived[i], derived[j]) })
	if len(derived) > 0 {
		vm.writeLine("Dictionary: " + joinWords(derived))
	}
	return nil
}

func biHelp(vm *VM) error {
	for _, g := range coreGroups() {
		vm.writeLine(g + ":")
		for _, e := range coreLibrary {
			if e.Group == g {
				vm.writeLine("  " + e.Name + " " + e.Sig.String() + "  " + e.Doc)
			}
		}
	}
	return nil
}

// biHelpName documents a single word by name, the argument form of `help`
// reached through execTokens' lookahead when the next token resolves.
func (vm *VM) biHelpName(name string) {
	if e, ok := lookupCore(name); ok {
		vm.writeLine(e.Name + " " + e.Sig.String() + "  " + e.Doc)
		return
	}
	if wd, ok := vm.Dictionary[name]; ok {
		line := name + " " + wd.Signature.String()
		if wd.Doc != "" {
			line += "  " + wd.Doc
		}
		vm.writeLine(line)
	}
}

// biSeeName implements the definition-time "see" word: print a word's
// signature and body. It is reached via execTokens' lookahead rather than
// the builtinHandlers table, since "see" consumes its target from the
// following token, not the stack.
func (vm *VM) biSeeName(name string) {
	if e, ok := lookupCore(name); ok {
		vm.writeLine(name + " " + e.Sig.String() + "  (genesis axiom)")
		return
	}
	wd, ok := vm.Dictionary[name]
	if !ok {
		vm.writeLine("undefined word " + name)
		return
	}
	if wd.IsAxiom {
		vm.writeLine(name + " " + wd.Signature.String() + "  (axiom)")
		return
	}
	parts := make([]string, len(wd.Body))
	for i, t := range wd.Body {
		parts[i] = RenderToken(t)
	}
	vm.writeLine(name + " " + wd.Signature.String() + " : " + joinWords(parts) + " ;")
}

func biOrdinal(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "--ordinal"}
	}
	q := vm.peek(1)[0]
	if q.Kind != KQuote {
		return &TypeMismatchError{Op: "--ordinal", Expected: "Quote", Found: q.TypeOf().String()}
	}
	ord, err := EstimateQuoteOrdinal(q.Quote)
	if err != nil {
		return err
	}
	vm.Stack[len(vm.Stack)-1] = OrdinalValue(ord)
	return nil
}

func biClear(vm *VM) error {
	vm.Stack = nil
	return nil
}

func biDepth(vm *VM) error {
	vm.Stack = append(vm.Stack, NatValue(uint64(len(vm.Stack))))
	return nil
}

func biQuit(vm *VM) error {
	return quitSignal{}
}

func biSome(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "Some"}
	}
	v := vm.Stack[len(vm.Stack)-1]
	vm.Stack[len(vm.Stack)-1] = SomeValue(v)
	return nil
}

func biNone(vm *VM) error {
	vm.Stack = append(vm.Stack, NoneValue())
	return nil
}

func biOk(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "Ok"}
	}
	v := vm.Stack[len(vm.Stack)-1]
	vm.Stack[len(vm.Stack)-1] = OkValue(v)
	return nil
}

func biErr(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "Err"}
	}
	v := vm.Stack[len(vm.Stack)-1]
	vm.Stack[len(vm.Stack)-1] = ErrValue(v)
	return nil
}

// biList pops n, then pops n values, and pushes them back as a List in
// earliest-pushed-first order.
func biList(vm *VM) error {
	if len(vm.Stack) < 1 {
		return &StackError{Op: "list"}
	}
	nv := vm.peek(1)[0]
	if nv.Kind != KNat {
		return &TypeMismatchError{Op: "list", Expected: "Nat", Found: nv.TypeOf().String()}
	}
	n := int(nv.Nat)
	if len(vm.Stack)-1 < n {
		return &StackError{Op: "list"}
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	items := make([]Value, n)
	base := len(vm.Stack) - n
	copy(items, vm.Stack[base:])
	vm.Stack = vm.Stack[:base]
	vm.Stack = append(vm.Stack, ListValue(items))
	return nil
}

// writeLine is the single funnel onto the text sink. Runes go out
// through runeio so control characters embedded in Str values (which render
// raw, per the canonical forms) reach the host in their 7-bit-safe form.
func (vm *VM) writeLine(s string) {
	if vm.Out == nil {
		return
	}
	runeio.WriteANSIString(vm.Out, s)
	vm.Out.Write([]byte{'\n'})
}

func joinWords(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " "
		}
		out += n
	}
	return out
}
