package cutlinecmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	cutlinecmder "github.com/cutlineco/cutline/cmd/cutline"
)

var _ = Describe("NewCutlineCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := cutlinecmder.NewCutlineCmd()
		Expect(cmd.Use).To(Equal("cutline"))
	})

	It("registers all subcommands", func() {
		cmd := cutlinecmder.NewCutlineCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements(
			"release", "archive", "init", "config", "check", "version",
		))
	})

	It("has a --debug persistent flag", func() {
		cmd := cutlinecmder.NewCutlineCmd()
		f := cmd.PersistentFlags().Lookup("debug")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("d"))
		Expect(f.DefValue).To(Equal("false"))
	})

	It("has a --config-dir persistent flag", func() {
		cmd := cutlinecmder.NewCutlineCmd()
		f := cmd.PersistentFlags().Lookup("config-dir")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})
