package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/hrms-portal/internal/auth"
	"github.com/frahmantamala/hrms-portal/internal/auth/postgres"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/session"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSessionRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Repository Suite")
}

var _ = Describe("SessionRepository", func() {
	var (
		db   *gorm.DB
		repo *postgres.SessionRepository
		ctx  context.Context
	)

	newSession := func(id, hash string, expiresAt time.Time) *session.Session {
		return &session.Session{
			ID:           id,
			TokenHash:    hash,
			UserID:       "u-" + id,
			Email:        id + "@corp.io",
			Role:         "employee",
			BackendToken: "backend-" + id,
			Flash:        "[]",
			ExpiresAt:    expiresAt,
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&session.Session{})).To(Succeed())
		repo = postgres.NewSessionRepository(db)
		ctx = context.Background()
	})

	It("finds sessions by token digest", func() {
		Expect(repo.Create(ctx, newSession("s1", "hash-1", time.Now().Add(time.Hour)))).To(Succeed())

		found, err := repo.FindByTokenHash(ctx, "hash-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal("s1"))
		Expect(found.BackendToken).To(Equal("backend-s1"))

		_, err = repo.FindByTokenHash(ctx, "missing")
		Expect(err).To(MatchError(auth.ErrSessionNotFound))
	})

	It("rejects duplicate token digests", func() {
		Expect(repo.Create(ctx, newSession("s1", "dup", time.Now().Add(time.Hour)))).To(Succeed())
		Expect(repo.Create(ctx, newSession("s2", "dup", time.Now().Add(time.Hour)))).NotTo(Succeed())
	})

	It("rewrites the flash column", func() {
		Expect(repo.Create(ctx, newSession("s1", "h1", time.Now().Add(time.Hour)))).To(Succeed())

		err := repo.ModifyFlash(ctx, "s1", func(current string) (string, error) {
			Expect(current).To(Equal("[]"))
			return `[{"level":"success","message":"Saved"}]`, nil
		})
		Expect(err).NotTo(HaveOccurred())

		found, err := repo.FindByTokenHash(ctx, "h1")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.Flash).To(ContainSubstring("Saved"))

		err = repo.ModifyFlash(ctx, "nope", func(string) (string, error) { return "[]", nil })
		Expect(err).To(MatchError(auth.ErrSessionNotFound))
	})

	It("deletes sessions", func() {
		Expect(repo.Create(ctx, newSession("s1", "h1", time.Now().Add(time.Hour)))).To(Succeed())
		Expect(repo.Delete(ctx, "s1")).To(Succeed())
		_, err := repo.FindByTokenHash(ctx, "h1")
		Expect(err).To(MatchError(auth.ErrSessionNotFound))
	})

	It("deletes only expired sessions", func() {
		now := time.Now()
		Expect(repo.Create(ctx, newSession("old", "h1", now.Add(-time.Hour)))).To(Succeed())
		Expect(repo.Create(ctx, newSession("new", "h2", now.Add(time.Hour)))).To(Succeed())

		n, err := repo.DeleteExpired(ctx, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))

		_, err = repo.FindByTokenHash(ctx, "h2")
		Expect(err).NotTo(HaveOccurred())
	})
})
