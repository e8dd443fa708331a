package reminder

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const planBucketName = "plans"

// Store defines the interface for plan persistence. Plans are keyed by
// user x bill; writing again for the same key overwrites the prior plan.
type Store interface {
	// UpsertPlan saves a plan, replacing any existing plan for the same
	// user and bill
	UpsertPlan(plan *Plan) error

	// GetPlan retrieves the plan for a user's bill
	GetPlan(userID, billID string) (*Plan, error)

	// Close closes the store
	Close() error
}

// planKey builds the composite identity a plan is stored under.
func planKey(userID, billID string) []byte {
	return []byte(userID + "#" + billID)
}

// BoltStore implements the Store interface using BoltDB
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a new BoltStore instance
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(planBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// UpsertPlan saves a plan with last-write-wins semantics
func (b *BoltStore) UpsertPlan(plan *Plan) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(planBucketName))
		data, err := json.Marshal(plan)
		if err != nil {
			return fmt.Errorf("marshaling plan: %w", err)
		}
		return bucket.Put(planKey(plan.UserID, plan.BillID), data)
	})
}

// GetPlan retrieves the plan for a user's bill
func (b *BoltStore) GetPlan(userID, billID string) (*Plan, error) {
	var plan *Plan
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(planBucketName))
		data := bucket.Get(planKey(userID, billID))
		if data == nil {
			return fmt.Errorf("plan not found: %s/%s", userID, billID)
		}
		return json.Unmarshal(data, &plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Close closes the store
func (b *BoltStore) Close() error {
	return b.db.Close()
}
