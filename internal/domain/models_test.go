package domain_test

import (
	"testing"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The schema must migrate on sqlite, which has no gen_random_uuid();
// primary keys come from the BeforeCreate hooks instead.
func TestModelsMigrateWithoutDatabaseDefaults(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.CatalogEntry{},
		&domain.CatalogItem{},
		&domain.Order{},
		&domain.OrderLine{},
		&domain.Proposal{},
		&domain.ProposalCandidate{},
		&domain.Message{},
		&domain.OrderRevision{},
		&domain.NumberSequence{},
	)
	require.NoError(t, err)

	user := &domain.User{
		Email:       "ana@sipp.test",
		DisplayName: "Ana",
		Role:        domain.RoleRequester,
	}
	require.NoError(t, db.Create(user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)

	seq := &domain.NumberSequence{Year: 2026}
	require.NoError(t, db.Create(seq).Error)
	assert.NotEqual(t, uuid.Nil, seq.ID)

	rev := &domain.OrderRevision{OrderID: uuid.New(), Snapshot: "{}"}
	require.NoError(t, db.Create(rev).Error)
	assert.NotEqual(t, uuid.Nil, rev.ID)

	entry := &domain.CatalogEntry{
		Company:     "acme",
		CompanyName: "Acme S.L.",
		Kind:        domain.KindGoods,
	}
	require.NoError(t, db.Create(entry).Error)
	assert.NotEqual(t, uuid.Nil, entry.ID)
}
