// Package vm provides instruction execution for the BNA virtual machine.
package vm

import (
	"fmt"
	"time"

	"github.com/zurustar/bna/pkg/opcode"
	"github.com/zurustar/bna/pkg/program"
	"github.com/zurustar/bna/pkg/value"
)

// run is the state of a single execution.
type run struct {
	vm   *VM
	prog *program.Program
	env  *Environment
	pc   int

	steps int
	jumps int
}

// Run executes prog to completion against a copy of initial (nil means empty).
//
// The returned Environment is the final state on success. On failure Run returns
// the environment as it was when the failing instruction aborted the run, with
// every earlier mutation still visible, together with a *RuntimeError.
//
// Parameters:
//   - prog: A program produced by program.Build
//   - initial: Input variables; never modified
//
// Returns:
//   - *Environment: The final (or failure-time) environment
//   - error: nil, or a *RuntimeError
func (vm *VM) Run(prog *program.Program, initial *Environment) (*Environment, error) {
	env := NewEnvironment()
	if initial != nil {
		env = initial.Clone()
	}
	r := &run{vm: vm, prog: prog, env: env}

	start := time.Now()
	vm.log.Debug("Run started", "instructions", prog.Len(), "inputs", env.Len(), "max_steps", vm.maxSteps)

	err := r.loop()

	if err != nil {
		vm.log.Debug("Run aborted", "error", err, "steps", r.steps, "jumps", r.jumps, "elapsed", time.Since(start))
		return r.env, err
	}
	vm.log.Debug("Run completed", "steps", r.steps, "jumps", r.jumps, "elapsed", time.Since(start))
	return r.env, nil
}

func (r *run) loop() error {
	for r.pc >= 0 && r.pc < r.prog.Len() {
		in := r.prog.At(r.pc)

		if r.vm.maxSteps > 0 && r.steps >= r.vm.maxSteps {
			return NewStepLimitError(r.vm.maxSteps).at(r.pc, in)
		}
		if r.vm.trace != nil {
			r.vm.trace(Step{PC: r.pc, Instruction: in, Env: r.env.Clone()})
		}
		r.steps++

		next, err := r.execute(in)
		if err != nil {
			return classify(err).at(r.pc, in)
		}
		r.pc = next
	}
	return nil
}

// execute applies one instruction and returns the next program counter.
func (r *run) execute(in opcode.Instruction) (int, error) {
	switch in.Kind {
	case opcode.Label:
		// no-op

	case opcode.Assign:
		v, err := r.eval(in.Expr)
		if err != nil {
			return 0, err
		}
		if in.Index != nil {
			if err := r.storeElem(in.Target, in.Index, v); err != nil {
				return 0, err
			}
		} else {
			r.env.Set(in.Target, v)
		}

	case opcode.Expression:
		if !r.env.Has(in.Target) {
			return 0, NewUndefinedVariableError(in.Target)
		}
		v, err := r.eval(in.Expr)
		if err != nil {
			return 0, err
		}
		r.env.Set(in.Target, v)

	case opcode.Print:
		v, err := r.eval(in.Expr)
		if err != nil {
			return 0, err
		}
		r.vm.console.Emit(v.String())

	case opcode.IO:
		if err := r.io(in); err != nil {
			return 0, err
		}

	case opcode.Jump:
		taken := true
		if in.Cond != nil {
			c, err := r.eval(in.Cond)
			if err != nil {
				return 0, err
			}
			if taken, err = value.Truthy(c); err != nil {
				return 0, err
			}
		}
		if taken {
			target, ok := r.prog.Resolve(in.Label)
			if !ok {
				// Build guarantees every target exists.
				return 0, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unresolved label %q", in.Label))
			}
			r.jumps++
			r.vm.log.Debug("Jump taken", "from", r.pc, "to", target, "label", in.Label)
			return target, nil
		}

	default:
		return 0, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unknown instruction kind %s", in.Kind))
	}
	return r.pc + 1, nil
}

func (r *run) storeElem(name string, index opcode.Expr, v value.Value) error {
	list, ok := r.env.Get(name)
	if !ok {
		return NewUndefinedVariableError(name)
	}
	i, err := r.evalIndex(index)
	if err != nil {
		return err
	}
	updated, err := value.SetIndex(list, i, v)
	if err != nil {
		return err
	}
	r.env.Set(name, updated)
	return nil
}

// io performs a delegated side effect.
func (r *run) io(in opcode.Instruction) error {
	args := make([]value.Value, len(in.Args))
	for i, a := range in.Args {
		v, err := r.eval(a)
		if err != nil {
			return err
		}
		args[i] = v
	}
	if err := checkArity(in.Op, len(args)); err != nil {
		return err
	}

	switch in.Op {
	case opcode.Open:
		path, ok := args[0].AsText()
		if !ok {
			return fmt.Errorf("%w: OPEN needs a TEXT path, got %s", value.ErrTypeMismatch, args[0].Kind())
		}
		h, err := r.vm.files.Open(path, in.Mode)
		if err != nil {
			return NewIOError(in.Op, err)
		}
		r.env.Set(in.Target, value.Int(h))

	case opcode.Close:
		h, err := handleOf(args[0])
		if err != nil {
			return err
		}
		if err := r.vm.files.Close(h); err != nil {
			return NewIOError(in.Op, err)
		}

	case opcode.Read:
		h, err := handleOf(args[0])
		if err != nil {
			return err
		}
		line, eof, err := r.vm.files.ReadLine(h)
		if err != nil {
			return NewIOError(in.Op, err)
		}
		r.env.Set(in.Target, value.Str(line))
		r.env.Set(EOFVar, value.Bool(eof))

	case opcode.Write:
		h, err := handleOf(args[0])
		if err != nil {
			return err
		}
		if err := r.vm.files.Write(h, args[1].String()); err != nil {
			return NewIOError(in.Op, err)
		}

	case opcode.Input:
		text, err := r.vm.console.Prompt(args[0].String())
		if err != nil {
			return NewIOError(in.Op, err)
		}
		r.env.Set(in.Target, value.Str(text))

	case opcode.Wait:
		secs, ok := args[0].AsFloat()
		if !ok {
			return fmt.Errorf("%w: WAIT needs a number of seconds, got %s", value.ErrTypeMismatch, args[0].Kind())
		}
		if secs < 0 {
			return fmt.Errorf("%w: cannot wait %v seconds", value.ErrArithmetic, secs)
		}
		r.vm.clock.Pause(secs)

	case opcode.Fail:
		return NewScriptError(args[0].String())

	default:
		return NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unknown IO operation %q", in.Op))
	}
	return nil
}

var ioArity = map[opcode.IOOp]int{
	opcode.Open:  1,
	opcode.Close: 1,
	opcode.Read:  1,
	opcode.Write: 2,
	opcode.Input: 1,
	opcode.Wait:  1,
	opcode.Fail:  1,
}

func checkArity(op opcode.IOOp, n int) error {
	want, ok := ioArity[op]
	if !ok {
		return NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unknown IO operation %q", op))
	}
	if n != want {
		return NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("%s takes %d operand(s), got %d", op, want, n))
	}
	return nil
}

func handleOf(v value.Value) (int64, error) {
	h, ok := v.AsInt()
	if !ok {
		return 0, fmt.Errorf("%w: expected a file handle, got %s", value.ErrTypeMismatch, v.Kind())
	}
	return h, nil
}
