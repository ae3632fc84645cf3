package vm

import (
	"errors"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zurustar/bna/pkg/opcode"
	"github.com/zurustar/bna/pkg/program"
	"github.com/zurustar/bna/pkg/value"
)

var _ = Describe("VM collaborators", func() {
	var (
		mockCtrl    *gomock.Controller
		mockRandom  *MockRandomSource
		mockClock   *MockClock
		mockConsole *MockConsole
		mockFiles   *MockFileSystem
		machine     *VM
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockRandom = NewMockRandomSource(mockCtrl)
		mockClock = NewMockClock(mockCtrl)
		mockConsole = NewMockConsole(mockCtrl)
		mockFiles = NewMockFileSystem(mockCtrl)
		machine = New(
			WithRandom(mockRandom),
			WithClock(mockClock),
			WithConsole(mockConsole),
			WithFileSystem(mockFiles),
		)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	run := func(code ...opcode.Instruction) (*Environment, error) {
		return machine.Run(program.MustBuild(code...), nil)
	}

	It("should print values through the console", func() {
		gomock.InOrder(
			mockConsole.EXPECT().Emit("hello"),
			mockConsole.EXPECT().Emit("(1, 2.5)"),
		)

		_, err := run(
			opcode.NewPrint(opcode.Str("hello")),
			opcode.NewPrint(opcode.List(opcode.Int(1), opcode.Lit(value.Float(2.5)))),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should store the typed line for INPUT", func() {
		mockConsole.EXPECT().Prompt("Name? ").Return("Ada", nil)

		env, err := run(opcode.NewIO(opcode.Input, "name", opcode.Str("Name? ")))
		Expect(err).NotTo(HaveOccurred())
		v, _ := env.Get("name")
		Expect(v.GoString()).To(Equal(`"Ada"`))
	})

	It("should fail with IO_ERROR when input is exhausted", func() {
		mockConsole.EXPECT().Prompt(gomock.Any()).Return("", errors.New("EOF"))

		_, err := run(opcode.NewIO(opcode.Input, "name", opcode.Str("")))
		Expect(IsType(err, ErrorIO)).To(BeTrue())
	})

	It("should pass the random range through inclusively", func() {
		mockRandom.EXPECT().NextInt(int64(0), int64(5)).Return(int64(3))

		env, err := run(opcode.NewAssign("r", opcode.Rand(opcode.Int(0), opcode.Bin(opcode.Sub, opcode.Int(6), opcode.Int(1)))))
		Expect(err).NotTo(HaveOccurred())
		v, _ := env.Get("r")
		Expect(v.String()).To(Equal("3"))
	})

	It("should draw a real below a real maximum", func() {
		mockRandom.EXPECT().NextInt(gomock.Any(), gomock.Any()).Times(0)
		mockRandom.EXPECT().NextFloat().Return(0.25)

		env, err := run(opcode.NewAssign("r", opcode.RandBelow(opcode.Lit(value.Float(2.5)))))
		Expect(err).NotTo(HaveOccurred())
		v, _ := env.Get("r")
		Expect(v.Kind()).To(Equal(value.Real))
		Expect(v.String()).To(Equal("0.625"))
	})

	It("should report the maximum as written for RANDOM", func() {
		mockRandom.EXPECT().NextInt(gomock.Any(), gomock.Any()).Times(0)

		_, err := run(opcode.NewAssign("r", opcode.RandBelow(opcode.Int(0))))
		Expect(IsType(err, ErrorArithmetic)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("got 0"))
	})

	It("should never ask the random source for an empty range", func() {
		mockRandom.EXPECT().NextInt(gomock.Any(), gomock.Any()).Times(0)

		_, err := run(opcode.NewAssign("r", opcode.Rand(opcode.Int(0), opcode.Int(-1))))
		Expect(IsType(err, ErrorArithmetic)).To(BeTrue())
	})

	It("should pause the clock for WAIT", func() {
		mockClock.EXPECT().Pause(1.5)

		_, err := run(opcode.NewIO(opcode.Wait, "", opcode.Lit(value.Float(1.5))))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should open, write and close a file by handle", func() {
		gomock.InOrder(
			mockFiles.EXPECT().Open("out.txt", opcode.WriteMode).Return(int64(1), nil),
			mockFiles.EXPECT().Write(int64(1), "42").Return(nil),
			mockFiles.EXPECT().Close(int64(1)).Return(nil),
		)

		env, err := run(
			opcode.NewOpen("f", opcode.Str("out.txt"), opcode.WriteMode),
			opcode.NewIO(opcode.Write, "", opcode.Ref("f"), opcode.Int(42)),
			opcode.NewIO(opcode.Close, "", opcode.Ref("f")),
		)
		Expect(err).NotTo(HaveOccurred())
		v, _ := env.Get("f")
		Expect(v.String()).To(Equal("1"))
	})

	It("should set eof when READ reaches the end of a file", func() {
		gomock.InOrder(
			mockFiles.EXPECT().ReadLine(int64(2)).Return("last", false, nil),
			mockFiles.EXPECT().ReadLine(int64(2)).Return("", true, nil),
		)

		env, err := run(
			opcode.NewAssign("f", opcode.Int(2)),
			opcode.NewIO(opcode.Read, "a", opcode.Ref("f")),
			opcode.NewAssign("first", opcode.Ref(EOFVar)),
			opcode.NewIO(opcode.Read, "b", opcode.Ref("f")),
		)
		Expect(err).NotTo(HaveOccurred())
		first, _ := env.Get("first")
		eof, _ := env.Get(EOFVar)
		b, _ := env.Get("b")
		Expect(first.String()).To(Equal("0"))
		Expect(eof.String()).To(Equal("1"))
		Expect(b.GoString()).To(Equal(`""`))
	})

	It("should wrap file system failures as IO_ERROR", func() {
		cause := errors.New("permission denied")
		mockFiles.EXPECT().Open("secret", opcode.ReadMode).Return(int64(0), cause)

		env, err := run(opcode.NewOpen("f", opcode.Str("secret"), opcode.ReadMode))
		Expect(IsType(err, ErrorIO)).To(BeTrue())
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(env.Has("f")).To(BeFalse())
	})

	It("should reject a non-text path before touching the file system", func() {
		mockFiles.EXPECT().Open(gomock.Any(), gomock.Any()).Times(0)

		_, err := run(opcode.NewOpen("f", opcode.Int(3), opcode.ReadMode))
		Expect(IsType(err, ErrorTypeMismatch)).To(BeTrue())
	})

	It("should stop at ERROR without running later side effects", func() {
		mockConsole.EXPECT().Emit(gomock.Any()).Times(0)

		_, err := run(
			opcode.NewIO(opcode.Fail, "", opcode.Str("bad input")),
			opcode.NewPrint(opcode.Str("unreachable")),
		)
		Expect(IsType(err, ErrorScript)).To(BeTrue())
		Expect(err.(*RuntimeError).Message).To(Equal("bad input"))
	})
})
