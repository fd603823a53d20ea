package reconcile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"payment-integrator/core/storage/mocks"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArchiveReporter_Report(t *testing.T) {
	client := new(mocks.Client)
	rep := NewArchiveReporter(client, "reconciliation", "reports/reconcile")
	res := sampleResult(OutcomeIntegrated, StateDone)

	var uploaded []byte
	client.On("PutObject", mock.Anything, "reconciliation", "reports/reconcile/run-1.json", mock.Anything, mock.Anything, mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
		return opts.ContentType == "application/json"
	})).Run(func(args mock.Arguments) {
		data, err := io.ReadAll(args.Get(3).(io.Reader))
		require.NoError(t, err)
		uploaded = data
	}).Return(minio.UploadInfo{}, nil)

	require.NoError(t, rep.Report(context.Background(), res))
	client.AssertExpectations(t)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(bytes.NewReader(uploaded)).Decode(&decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, "integrated", decoded["outcome"])
}

func TestLoadArchivedResult(t *testing.T) {
	t.Run("Decodes Report", func(t *testing.T) {
		client := new(mocks.Client)
		data, err := json.Marshal(sampleResult(OutcomeIntegrated, StateDone))
		require.NoError(t, err)
		client.On("GetObject", mock.Anything, "reconciliation", "reports/run-1.json", minio.GetObjectOptions{}).
			Return(io.NopCloser(bytes.NewReader(data)), nil)

		res, err := LoadArchivedResult(context.Background(), client, "reconciliation", "reports/run-1.json")
		require.NoError(t, err)
		assert.Equal(t, "run-1", res.RunID)
		assert.Equal(t, OutcomeIntegrated, res.Outcome)
		assert.Equal(t, StateDone, res.State)
	})

	t.Run("Corrupt Report", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "b", "p/x.json", minio.GetObjectOptions{}).
			Return(io.NopCloser(bytes.NewReader([]byte("{not json"))), nil)

		_, err := LoadArchivedResult(context.Background(), client, "b", "p/x.json")
		assert.Error(t, err)
	})

	t.Run("Download Error", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "b", "p/x.json", minio.GetObjectOptions{}).
			Return(nil, errors.New("no such key"))

		_, err := LoadArchivedResult(context.Background(), client, "b", "p/x.json")
		assert.Error(t, err)
	})
}

func TestArchiveReporter_UploadError(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("bucket unavailable"))

	err := NewArchiveReporter(client, "b", "p").Report(context.Background(), sampleResult(OutcomeNothingToDo, StateDone))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "p/run-1.json")
}

func TestEngine_ArchiveFailureKeepsOutcome(t *testing.T) {
	f := newFixture(t)
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("unreachable"))

	res := newTestEngine(t, WithReporters(NewArchiveReporter(client, "b", "p"))).Run(context.Background(), f.open(t))

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, OutcomeIntegrated, res.Outcome)
	client.AssertNumberOfCalls(t, "PutObject", 1)
}
