package sailfish_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	sailfish "github.com/nikolalohinski/terraform-provider-sailfish/provider"
)

var _ = Context("provider", func() {
	It("should be valid", func() {
		Expect(sailfish.Provider().InternalValidate()).To(Succeed())
	})
	It("should expose the sailfish data sources", func() {
		provider := sailfish.Provider()
		Expect(provider.DataSourcesMap).To(HaveKey("sailfish_fragment"))
		Expect(provider.DataSourcesMap).To(HaveKey("sailfish_template"))
	})
})
