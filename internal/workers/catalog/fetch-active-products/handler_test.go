// internal/workers/catalog/fetch-active-products/handler_test.go
package fetchactiveproducts

import (
	"context"
	"testing"
	"time"

	stderrors "loanmatch-workers/internal/common/errors"
	"loanmatch-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	redismock "github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{
		CacheKey: "catalog:active-products",
		CacheTTL: time.Minute,
		Timeout:  5 * time.Second,
	}
}

func setupMiniredis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

var productColumns = []string{
	"id", "lender_id", "name", "description", "type", "active",
	"requirements", "limits", "weights", "external_apply_url",
	"lender_name", "lender_active", "brand_color", "website", "referral_url", "referral_params",
}

func sampleRows() *sqlmock.Rows {
	requirements := []byte(`{"age_min": 18, "age_max": 70, "income_min": 10000}`)
	limits := []byte(`{"max_amount": 50000, "max_term": 36}`)
	weights := []byte(`{"purpose": {"consumo": 0.6}}`)
	params := []byte(`{"utm_source": "loanmatch"}`)

	return sqlmock.NewRows(productColumns).
		AddRow("loan-1", "lender-1", "Flex Loan", "A personal loan", "personal_loan", true,
			requirements, limits, weights, nil,
			"Banco Uno", true, "#112233", "https://banco.example", "https://banco.example/apply", params).
		AddRow("card-1", "lender-2", "Air Card", nil, "tarjeta_credito", true,
			nil, nil, nil, "https://cards.example/apply",
			"Tarjetas SA", true, nil, nil, nil, nil)
}

func TestExecute_DatabaseFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.id, p.lender_id").WillReturnRows(sampleRows())

	h := NewHandler(createTestConfig(), db, setupMiniredis(t), logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.False(t, output.FromCache)
	assert.Equal(t, 2, output.Count)
	require.Len(t, output.Products, 2)

	loan := output.Products[0]
	assert.Equal(t, "loan-1", loan.ID)
	assert.Equal(t, "personal_loan", loan.Category)
	require.NotNil(t, loan.Requirements)
	assert.Equal(t, 10000.0, *loan.Requirements.IncomeMin)
	require.NotNil(t, loan.Lender)
	assert.Equal(t, "Banco Uno", loan.Lender.Name)
	assert.Equal(t, "loanmatch", loan.Lender.ReferralParams["utm_source"])

	card := output.Products[1]
	assert.Nil(t, card.Requirements)
	assert.Equal(t, "https://cards.example/apply", card.ExternalApplyURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CachePopulatedAndReused(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Only one database round trip for two executions.
	mock.ExpectQuery("SELECT p.id, p.lender_id").WillReturnRows(sampleRows())

	h := NewHandler(createTestConfig(), db, setupMiniredis(t), logger.NewTestLogger(t))

	first, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Count, second.Count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_BypassCache(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.id, p.lender_id").WillReturnRows(sampleRows())
	mock.ExpectQuery("SELECT p.id, p.lender_id").WillReturnRows(sampleRows())

	h := NewHandler(createTestConfig(), db, setupMiniredis(t), logger.NewTestLogger(t))

	_, err = h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	output, err := h.Execute(context.Background(), &Input{BypassCache: true})
	require.NoError(t, err)
	assert.False(t, output.FromCache)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CorruptCacheFallsBackToDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.id, p.lender_id").WillReturnRows(sampleRows())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, mr.Set("catalog:active-products", "{not json"))

	h := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.False(t, output.FromCache)
	assert.Equal(t, 2, output.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_EmptyCatalogIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.id, p.lender_id").WillReturnRows(sqlmock.NewRows(productColumns))

	h := NewHandler(createTestConfig(), db, setupMiniredis(t), logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Count)
	assert.NotNil(t, output.Products)
}

func TestExecute_QueryFailureIsRetryable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.id, p.lender_id").WillReturnError(assert.AnError)

	h := NewHandler(createTestConfig(), db, setupMiniredis(t), logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{})

	require.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "CATALOG_FETCH_FAILED", string(stdErr.Code))
}

// redismock covers the unreachable-cache path without a live server.
func TestExecute_CacheUnavailableStillServes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.id, p.lender_id").WillReturnRows(sampleRows())

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("catalog:active-products").SetErr(assert.AnError)
	rmock.Regexp().ExpectSet("catalog:active-products", `.*`, time.Minute).SetErr(assert.AnError)

	h := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.False(t, output.FromCache)
}
