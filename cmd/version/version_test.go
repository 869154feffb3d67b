package versioncmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/cutlineco/cutline/cmd/version"
	"github.com/cutlineco/cutline/pkg/utils"
)

var _ = Describe("version command", func() {
	It("prints the binary's build metadata", func() {
		var out bytes.Buffer
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("cutline"))
		Expect(out.String()).To(ContainSubstring(utils.Version))
		Expect(out.String()).To(ContainSubstring(utils.Sha))
	})
})
