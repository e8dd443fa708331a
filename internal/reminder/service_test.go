package reminder

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kodwo/billminder/internal/fault"
)

// mockStore is a mock implementation of Store
type mockStore struct {
	plans     map[string]*Plan
	upsertErr error
}

func newMockStore() *mockStore {
	return &mockStore{plans: make(map[string]*Plan)}
}

func (m *mockStore) UpsertPlan(plan *Plan) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.plans[plan.UserID+"#"+plan.BillID] = plan
	return nil
}

func (m *mockStore) GetPlan(userID, billID string) (*Plan, error) {
	plan, ok := m.plans[userID+"#"+billID]
	if !ok {
		return nil, errors.New("plan not found")
	}
	return plan, nil
}

func (m *mockStore) Close() error {
	return nil
}

var _ = Describe("Service", func() {
	var (
		store   *mockStore
		service *Service
		plan    *Plan
		err     error
	)

	BeforeEach(func() {
		store = newMockStore()
		service = NewService(store)
	})

	Describe("Schedule", func() {
		JustBeforeEach(func() {
			plan, err = service.Schedule("alice", "bill-1", "2024-03-10", []int{7, 3, 0}, 9)
		})

		It("computes and persists the plan", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Events).To(HaveLen(3))
			Expect(plan.DueDate).To(Equal("2024-03-10"))
			Expect(store.plans).To(HaveKey("alice#bill-1"))
		})

		When("rescheduling with different offsets", func() {
			It("overwrites the stored plan", func() {
				rescheduled, schedErr := service.Schedule("alice", "bill-1", "2024-03-10", []int{1}, 9)
				Expect(schedErr).NotTo(HaveOccurred())
				Expect(rescheduled.Events).To(HaveLen(1))

				saved, getErr := service.GetPlan("alice", "bill-1")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Events).To(HaveLen(1))
				Expect(saved.Events[0].OffsetDays).To(Equal(1))
			})
		})

		When("the store is unavailable", func() {
			BeforeEach(func() {
				store.upsertErr = errors.New("disk full")
			})

			It("fails with UpstreamUnavailable", func() {
				Expect(err).To(HaveOccurred())
				Expect(fault.KindOf(err)).To(Equal(fault.UpstreamUnavailable))
			})
		})
	})

	Describe("Schedule with no due date", func() {
		It("fails with InvalidInput and stores nothing", func() {
			_, schedErr := service.Schedule("alice", "bill-1", "", []int{0}, 9)
			Expect(fault.KindOf(schedErr)).To(Equal(fault.InvalidInput))
			Expect(store.plans).To(BeEmpty())
		})
	})
})
