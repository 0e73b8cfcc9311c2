package observability

import (
	"errors"
	"testing"

	"alcyxob/routine-builder/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRecordSave(t *testing.T) {
	before := testutil.ToFloat64(collectionSaveCounter.WithLabelValues("routines", ResultFailure))

	RecordSave(domain.CollectionRoutines, errors.New("boom"))
	RecordSave(domain.CollectionRoutines, nil)

	assert.Equal(t, before+1, testutil.ToFloat64(collectionSaveCounter.WithLabelValues("routines", ResultFailure)))
}

func TestSetupLoggingLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	assert.Equal(t, zerolog.DebugLevel, SetupLogging("DEBUG", false))
	assert.Equal(t, zerolog.InfoLevel, SetupLogging("chatty", false))
	assert.Equal(t, zerolog.InfoLevel, SetupLogging("", true))
}
