// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqlib_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/db47h/seqsim/seqlib"
)

var _ = Describe("Config", func() {
	Describe("Variants", func() {
		It("should validate the shipped builds", func() {
			for name, fn := range seqlib.Variants() {
				Expect(fn().Validate()).To(Succeed(), name)
			}
		})

		It("should place the opcodes at their constant offsets", func() {
			tb := seqlib.TestBench1()
			Expect(tb.Opcodes).To(HaveLen(4))
			Expect(tb.Opcodes[0].Pattern).To(Equal(17689))
			Expect(tb.Opcodes[3].Pattern).To(Equal(17713))
			top := seqlib.I8051Top()
			Expect(top.Opcodes).To(HaveLen(2))
			Expect(top.Opcodes[0].Pattern).To(Equal(10317))
			Expect(top.Opcodes[1].Pattern).To(Equal(10325))
		})
	})

	Describe("Validate", func() {
		var cfg *seqlib.Config

		BeforeEach(func() {
			cfg = seqlib.TestBench1()
		})

		It("should require a name", func() {
			cfg.Name = ""
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject bad declarations", func() {
			cfg.Ports = "rom_addr[0]"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("ports")))
		})

		It("should reject unknown fetch and execute states", func() {
			cfg.FetchState = "decode"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("fetch_state")))
			cfg = seqlib.TestBench1()
			cfg.ExecState = cfg.FetchState
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject more micro-steps than steps", func() {
			cfg.Steps = "t0, t1, t2"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("INC A")))
		})

		It("should reject opcodes with no pattern", func() {
			cfg.Opcodes[1].Pattern = 42
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("offset 42")))
		})

		It("should reject duplicate constants", func() {
			cfg.Constants = append(cfg.Constants, seqlib.Constant{Offset: 17689, Bits: "0"})
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("duplicate")))
		})

		It("should reject invalid constant bits", func() {
			cfg.Constants[0].Bits = "01?"
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})

	Describe("Persistence", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "seqlib-*")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(dir)
		})

		It("should save and load a build", func() {
			path := filepath.Join(dir, "tb1.json")
			original := seqlib.TestBench1()
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := seqlib.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should fail on a missing file", func() {
			_, err := seqlib.LoadConfig(filepath.Join(dir, "nope.json"))
			Expect(err).To(HaveOccurred())
		})

		It("should fail on invalid JSON", func() {
			path := filepath.Join(dir, "bad.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())
			_, err := seqlib.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("parse")))
		})

		It("should validate loaded builds", func() {
			path := filepath.Join(dir, "bad.json")
			Expect(os.WriteFile(path, []byte(`{"name": ""}`), 0644)).To(Succeed())
			_, err := seqlib.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("name")))
		})
	})
})
