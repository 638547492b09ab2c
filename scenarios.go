package cao

// Scenario is one named source program from the worked-example corpus: a
// short snippet plus a one-line description of the effect a reader should
// expect on the stack. tools/gen_scenarios and scenarios_test.go both walk
// this table rather than each hard-coding it.
type Scenario struct {
	Name   string
	Source string
	Doc    string
}

// Scenarios is the worked-example corpus.
var Scenarios = []Scenario{
	{
		Name:   "arithmetic",
		Source: "3 4 +",
		Doc:    "pushes 3, pushes 4, adds: leaves 7",
	},
	{
		Name:   "compound_arithmetic",
		Source: "5 3 + 7 2 - *",
		Doc:    "(5+3) * (7-2): leaves 40",
	},
	{
		Name:   "conditional_true",
		Source: "true [ 10 ] [ 20 ] if",
		Doc:    "true branch of if: leaves 10",
	},
	{
		Name:   "conditional_false",
		Source: "false [ 10 ] [ 20 ] if",
		Doc:    "false branch of if: leaves 20",
	},
	{
		Name:   "user_word",
		Source: ":: square ( Nat -> Nat ) ;  : square dup * ;  6 square",
		Doc:    "defines and calls square: leaves 36",
	},
	{
		Name:   "times_loop",
		Source: "0 3 [ 1+ ] times",
		Doc:    "increments 0 three times via times: leaves 3",
	},
	{
		Name:   "pattern_matching",
		Source: "match case Some x -> dup + case None -> 0 end",
		Doc:    "doubles a Some payload already on the stack (empty scrutinee: match pops it)",
	},
}

// Run evaluates the scenario's source against a fresh VM and returns that
// VM (its Stack holds the result) and any evaluation error, pre-seeding
// the stack for scenarios (like pattern_matching)
// whose source expects a value already present.
func (s Scenario) Run(preStack ...Value) (*VM, error) {
	vm := NewVM()
	vm.Stack = append(vm.Stack, preStack...)
	err := vm.EvalSource(s.Source)
	return vm, err
}
