// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package splitcheck_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gogpu/shadeopt/passes"
	"github.com/gogpu/shadeopt/splitcheck"
	"github.com/gogpu/shadeopt/toolchain"
)

// lastArg matches a CompileRequest whose final argument is arg.
type lastArg string

func (m lastArg) Matches(x interface{}) bool {
	req, ok := x.(toolchain.CompileRequest)
	return ok && len(req.Args) > 0 && req.Args[len(req.Args)-1] == string(m)
}

func (m lastArg) String() string {
	return fmt.Sprintf("compile request ending in %s", string(m))
}

var _ = Describe("Driver", func() {
	var (
		mockCtrl *gomock.Controller
		mockTC   *MockToolchain
		driver   *splitcheck.Driver
		c        splitcheck.Case

		refProgram   = []byte("reference program")
		highLevel    = []byte("high-level module")
		splitProgram = []byte("split program")
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockTC = NewMockToolchain(mockCtrl)
		driver = &splitcheck.Driver{
			Toolchain: mockTC,
			Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
		c = splitcheck.Case{Source: []byte("source"), SourceName: "s.hlir", EntryPoint: "main", Target: "ps_6_0"}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	expectSetup := func(dump string) {
		mockTC.EXPECT().Compile(gomock.Any(), lastArg("/O2")).Return(refProgram, nil)
		mockTC.EXPECT().Disassemble(gomock.Any(), refProgram).Return("reference text", nil)
		mockTC.EXPECT().Compile(gomock.Any(), lastArg(toolchain.ArgDumpPasses)).Return([]byte(dump), nil)
	}

	expectHighLevel := func() {
		mockTC.EXPECT().Compile(gomock.Any(), lastArg(toolchain.ArgHighLevel)).Return(highLevel, nil)
	}

	// recordOptimizer answers every optimizer call and records its pass list.
	recordOptimizer := func(calls *[][]string, times int) {
		mockTC.EXPECT().RunOptimizer(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, module []byte, list []string) ([]byte, error) {
				*calls = append(*calls, slices.Clone(list))
				return append(slices.Clone(module), '+'), nil
			}).
			Times(times)
	}

	It("should stop at a failing reference compile", func() {
		mockTC.EXPECT().Compile(gomock.Any(), gomock.Any()).
			Return(nil, toolchain.Errorf(toolchain.ErrCompile, "compile", "boom"))

		r, err := driver.Run(context.Background(), c, 2)

		var se *splitcheck.StepError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.State).To(Equal(splitcheck.StateCompileReference))
		Expect(se.Index).To(Equal(-1))
		Expect(r.Passed()).To(BeFalse())
	})

	It("should run both halves of every split point", func() {
		expectSetup("-opt-fn-passes\n-simplifycfg\n-opt-mod-passes\n-a\n-b\n")
		expectHighLevel()
		var calls [][]string
		recordOptimizer(&calls, 8)
		mockTC.EXPECT().AssembleToContainer(gomock.Any(), gomock.Any()).Return(splitProgram, nil).Times(4)
		mockTC.EXPECT().Disassemble(gomock.Any(), splitProgram).Return("reference text", nil).Times(4)

		r, err := driver.Run(context.Background(), c, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Passed()).To(BeTrue())
		Expect(r.Checked).To(Equal(4))
		Expect(r.Function).To(Equal([]string{"-opt-fn-passes", "-simplifycfg"}))
		Expect(r.Module).To(Equal([]string{"-opt-mod-passes", "-a", "-b"}))
		Expect(calls[2]).To(Equal([]string{
			"-opt-fn-passes", "-simplifycfg", "-opt-mod-passes",
			"-opt-mod-passes", passes.Pause,
		}))
		Expect(calls[3]).To(Equal([]string{
			"-opt-fn-passes", "-simplifycfg", "-opt-mod-passes",
			passes.Resume, "-a", "-b",
		}))
		Expect(calls[7]).To(Equal([]string{
			"-opt-fn-passes", "-simplifycfg", "-opt-mod-passes", passes.Resume,
		}))
	})

	It("should feed the first half's module into the second half", func() {
		expectSetup("-opt-mod-passes\n-a\n")
		expectHighLevel()
		var modules [][]byte
		mockTC.EXPECT().RunOptimizer(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, module []byte, _ []string) ([]byte, error) {
				modules = append(modules, module)
				return append(slices.Clone(module), '+'), nil
			}).
			Times(6)
		mockTC.EXPECT().AssembleToContainer(gomock.Any(), gomock.Any()).Return(splitProgram, nil).Times(3)
		mockTC.EXPECT().Disassemble(gomock.Any(), splitProgram).Return("reference text", nil).Times(3)

		_, err := driver.Run(context.Background(), c, 2)

		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < len(modules); i += 2 {
			Expect(modules[i]).To(Equal(highLevel))
			Expect(modules[i+1]).To(Equal(append(slices.Clone(highLevel), '+')))
		}
	})

	It("should stop without failing at a no-pause marker", func() {
		expectSetup("-opt-fn-passes\n-opt-mod-passes\n-a\n-hlsl-passes-nopause\n-b\n")
		expectHighLevel()
		var calls [][]string
		recordOptimizer(&calls, 6)
		mockTC.EXPECT().AssembleToContainer(gomock.Any(), gomock.Any()).Return(splitProgram, nil).Times(3)
		mockTC.EXPECT().Disassemble(gomock.Any(), splitProgram).Return("reference text", nil).Times(3)

		r, err := driver.Run(context.Background(), c, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Passed()).To(BeTrue())
		Expect(r.Checked).To(Equal(3))
		Expect(r.Stopped).To(BeTrue())
		Expect(r.StoppedAt).To(Equal(3))
		for _, list := range calls {
			if slices.Contains(list, passes.Pause) {
				Expect(list).NotTo(ContainElement(passes.NoPause))
			}
		}
	})

	It("should report the first mismatch and stop", func() {
		expectSetup("-opt-mod-passes\n-a\n-b\n")
		expectHighLevel()
		var calls [][]string
		recordOptimizer(&calls, 4)
		mockTC.EXPECT().AssembleToContainer(gomock.Any(), gomock.Any()).Return(splitProgram, nil).Times(2)
		gomock.InOrder(
			mockTC.EXPECT().Disassemble(gomock.Any(), splitProgram).Return("reference text", nil),
			mockTC.EXPECT().Disassemble(gomock.Any(), splitProgram).Return("other text", nil),
		)

		r, err := driver.Run(context.Background(), c, 2)

		var me *splitcheck.MismatchError
		Expect(errors.As(err, &me)).To(BeTrue())
		Expect(me.Index).To(Equal(1))
		Expect(me.Boundary).To(Equal("-a"))
		Expect(me.Reference).To(Equal("reference text"))
		Expect(me.Got).To(Equal("other text"))
		Expect(me.Diff()).To(ContainSubstring("other text"))
		Expect(r.Mismatch).To(BeIdenticalTo(me))
		Expect(r.Checked).To(Equal(1))
	})

	It("should name the failing step and split point", func() {
		expectSetup("-opt-mod-passes\n-a\n")
		expectHighLevel()
		var calls [][]string
		recordOptimizer(&calls, 2)
		mockTC.EXPECT().AssembleToContainer(gomock.Any(), gomock.Any()).
			Return(nil, toolchain.Errorf(toolchain.ErrAssemble, "assemble", "no entry"))

		r, err := driver.Run(context.Background(), c, 2)

		var se *splitcheck.StepError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.State).To(Equal(splitcheck.StateReassemble))
		Expect(se.Index).To(Equal(0))
		Expect(se.Error()).To(HavePrefix("reassemble at split 0: "))
		Expect(r.State).To(Equal(splitcheck.StateReassemble))
	})

	DescribeTable("should reject a malformed pass dump",
		func(dump string, want error) {
			expectSetup(dump)

			_, err := driver.Run(context.Background(), c, 2)

			var se *splitcheck.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.State).To(Equal(splitcheck.StateDumpPasses))
			Expect(errors.Is(err, want)).To(BeTrue())
		},
		Entry("pause marker", "-opt-mod-passes\n-a\n-hlsl-passes-pause\n", passes.ErrUnexpectedMarker),
		Entry("resume marker", "-opt-mod-passes\n-hlsl-passes-resume\n-a\n", passes.ErrUnexpectedMarker),
		Entry("split function passes",
			"-opt-fn-passes\n-a\n-opt-mod-passes\n-b\n-opt-fn-passes\n-c\n", passes.ErrNonContiguous),
	)
})
