package program_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zurustar/bna/pkg/opcode"
	"github.com/zurustar/bna/pkg/program"
)

var _ = Describe("Build", func() {
	Context("with well-formed instructions", func() {
		var (
			input []opcode.Instruction
			prog  *program.Program
		)

		BeforeEach(func() {
			input = []opcode.Instruction{
				opcode.NewAssign("counter", opcode.Int(0)),
				opcode.NewLabel("loop"),
				opcode.NewJump("done", opcode.Bin(opcode.Gt, opcode.Ref("counter"), opcode.Int(3))),
				opcode.NewExpression("counter", opcode.Bin(opcode.Add, opcode.Ref("counter"), opcode.Int(1))),
				opcode.NewGoto("loop"),
				opcode.NewLabel("done"),
			}
			var err error
			prog, err = program.Build(input)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep the input order, labels included", func() {
			Expect(prog.Len()).To(Equal(len(input)))
			for i := range input {
				Expect(prog.At(i).String()).To(Equal(input[i].String()))
			}
		})

		It("should resolve forward and backward targets to the label position", func() {
			loop, ok := prog.Resolve("loop")
			Expect(ok).To(BeTrue())
			Expect(loop).To(Equal(1))

			done, ok := prog.Resolve("done")
			Expect(ok).To(BeTrue())
			Expect(done).To(Equal(5))
		})

		It("should list labels in sorted order", func() {
			Expect(prog.Labels()).To(Equal([]string{"done", "loop"}))
		})

		It("should not be affected by later changes to the input slice", func() {
			input[0] = opcode.NewPrint(opcode.Str("changed"))
			Expect(prog.At(0).Kind).To(Equal(opcode.Assign))
		})

		It("should render a listing with resolved jump targets", func() {
			Expect(prog.String()).To(ContainSubstring("GOTO loop  ; -> 1"))
		})
	})

	Context("with a jump to a missing label", func() {
		It("should fail with UnresolvedLabel and produce no program", func() {
			prog, err := program.Build([]opcode.Instruction{
				opcode.NewLabel("start"),
				opcode.NewGoto("nowhere").WithLine(3),
			})

			Expect(prog).To(BeNil())
			var be *program.BuildError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(be.Type).To(Equal(program.ErrorUnresolvedLabel))
			Expect(be.Label).To(Equal("nowhere"))
			Expect(be.Index).To(Equal(1))
			Expect(be.Line).To(Equal(3))
		})
	})

	Context("with a label declared twice", func() {
		It("should fail with DuplicateLabel", func() {
			_, err := program.Build([]opcode.Instruction{
				opcode.NewLabel("a"),
				opcode.NewLabel("b"),
				opcode.NewLabel("a"),
			})

			var be *program.BuildError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(be.Type).To(Equal(program.ErrorDuplicateLabel))
			Expect(be.Index).To(Equal(2))
			Expect(be.Error()).To(ContainSubstring("index 0"))
		})
	})

	Context("with empty names", func() {
		It("should reject an empty label", func() {
			_, err := program.Build([]opcode.Instruction{opcode.NewLabel("")})
			var be *program.BuildError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(be.Type).To(Equal(program.ErrorUnresolvedLabel))
		})

		It("should reject a jump without a target", func() {
			_, err := program.Build([]opcode.Instruction{opcode.NewGoto("")})
			Expect(err).To(HaveOccurred())
		})
	})

	It("should accept an empty program", func() {
		prog, err := program.Build(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Len()).To(BeZero())
	})

	It("should panic from MustBuild on an invalid program", func() {
		Expect(func() { program.MustBuild(opcode.NewGoto("x")) }).To(Panic())
	})
})
