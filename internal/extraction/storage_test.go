package extraction

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		dir   string
		store *LocalStorage
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		var err error
		store, err = NewLocalStorage(filepath.Join(dir, "documents"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("round-trips document bytes by reference", func() {
		ref, err := store.Save("bill.png", []byte("image bytes"))
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(Equal("bill.png"))

		data, err := store.Get("bill.png")
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte("image bytes")))
	})

	It("confines references to the document directory", func() {
		ref, err := store.Save("../escape.png", []byte("x"))
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(Equal("escape.png"))

		_, err = os.Stat(filepath.Join(dir, "escape.png"))
		Expect(os.IsNotExist(err)).To(BeTrue())

		data, err := store.Get("../escape.png")
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte("x")))
	})

	It("rejects an empty reference", func() {
		_, err := store.Save("", []byte("x"))
		Expect(err).To(HaveOccurred())
	})

	It("fails to read a missing document", func() {
		_, err := store.Get("nope.png")
		Expect(err).To(HaveOccurred())
	})

	It("deletes stored documents", func() {
		_, err := store.Save("bill.png", []byte("x"))
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Delete("bill.png")).To(Succeed())

		_, err = store.Get("bill.png")
		Expect(err).To(HaveOccurred())
	})
})
