package poller_test

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/config"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/database"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/poller"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository/relational"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	gateway *service.Service
	mon     *monitoring.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := relational.NewReadingRepository(db)
	require.NoError(t, repo.CreateTable(ctx))

	mon := monitoring.NewService(monitoring.Config{})
	return fixture{gateway: service.New(repo, nil, mon), mon: mon}
}

func (f fixture) newPoller(url string, timeout time.Duration, lock repository.PollLock) *poller.Poller {
	return poller.New(poller.Config{URL: url, Timeout: timeout}, f.gateway, lock, f.mon)
}

func sensor(t *testing.T, status int, body string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dados", r.URL.Path)
		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPollOnce_StoresWellFormedPayload(t *testing.T) {
	f := newFixture(t)
	srv := sensor(t, http.StatusOK, `{"temperature":36.5,"latitude":-23.5,"longitude":-46.6}`, 0)

	p := f.newPoller(srv.URL+"/dados", time.Second, nil)
	require.NoError(t, p.PollOnce(context.Background()))

	readings, err := f.gateway.ListReadingsStrict(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 36.5, readings[0].Temperature)
	assert.Equal(t, -23.5, readings[0].Latitude)
	assert.Equal(t, -46.6, readings[0].Longitude)
	series, err := testutil.GatherAndCount(f.mon.Registry(), "coldrelay_poll_cycles_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)
}

func TestPollOnce_FirmwarePayload(t *testing.T) {
	f := newFixture(t)
	srv := sensor(t, http.StatusOK, `{"temperatura":4.10,"latitude":-23.550520,"longitude":-46.633308,"dataHora":""}`, 0)

	require.NoError(t, f.newPoller(srv.URL+"/dados", time.Second, nil).PollOnce(context.Background()))

	readings := f.gateway.ListReadings(context.Background())
	require.Len(t, readings, 1)
	assert.Equal(t, 4.10, readings[0].Temperature)
}

func TestPollOnce_TimeoutStoresNothing(t *testing.T) {
	f := newFixture(t)
	srv := sensor(t, http.StatusOK, `{"temperature":1,"latitude":2,"longitude":3}`, 300*time.Millisecond)

	p := f.newPoller(srv.URL+"/dados", 50*time.Millisecond, nil)
	err := p.PollOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))

	// the scheduled entry point swallows the failure
	assert.NotPanics(t, p.Run)

	assert.Empty(t, f.gateway.ListReadings(context.Background()))
}

func TestPollOnce_MalformedJSON(t *testing.T) {
	f := newFixture(t)
	srv := sensor(t, http.StatusOK, `{"temperature":`, 0)

	err := f.newPoller(srv.URL+"/dados", time.Second, nil).PollOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	assert.Empty(t, f.gateway.ListReadings(context.Background()))
}

func TestPollOnce_ErrorStatus(t *testing.T) {
	f := newFixture(t)
	srv := sensor(t, http.StatusServiceUnavailable, `{}`, 0)

	err := f.newPoller(srv.URL+"/dados", time.Second, nil).PollOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))
}

func TestPollOnce_IncompletePayloadIsNotStored(t *testing.T) {
	f := newFixture(t)
	srv := sensor(t, http.StatusOK, `{"temperature":3,"latitude":2}`, 0)

	err := f.newPoller(srv.URL+"/dados", time.Second, nil).PollOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, f.gateway.ListReadings(context.Background()))
}

func TestPollOnce_Unreachable(t *testing.T) {
	f := newFixture(t)
	srv := sensor(t, http.StatusOK, `{}`, 0)
	url := srv.URL + "/dados"
	srv.Close()

	err := f.newPoller(url, time.Second, nil).PollOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))
}

type fakeLock struct {
	acquired bool
	err      error
	releases atomic.Int32
}

func (l *fakeLock) Acquire(context.Context, time.Duration) (bool, func(), error) {
	if l.err != nil || !l.acquired {
		return false, nil, l.err
	}
	return true, func() { l.releases.Add(1) }, nil
}

func TestPollOnce_SkipsWhenLockHeldElsewhere(t *testing.T) {
	f := newFixture(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	require.NoError(t, f.newPoller(srv.URL, time.Second, &fakeLock{acquired: false}).PollOnce(context.Background()))
	assert.Equal(t, int32(0), hits.Load())
	assert.Empty(t, f.gateway.ListReadings(context.Background()))
}

func TestPollOnce_ReleasesLock(t *testing.T) {
	f := newFixture(t)
	srv := sensor(t, http.StatusOK, `{"temperature":1,"latitude":2,"longitude":3}`, 0)
	lock := &fakeLock{acquired: true}

	require.NoError(t, f.newPoller(srv.URL+"/dados", time.Second, lock).PollOnce(context.Background()))
	assert.Equal(t, int32(1), lock.releases.Load())
}

func TestPollOnce_LockErrorStillPolls(t *testing.T) {
	f := newFixture(t)
	srv := sensor(t, http.StatusOK, `{"temperature":1,"latitude":2,"longitude":3}`, 0)
	lock := &fakeLock{err: stderrors.New("redis down")}

	require.NoError(t, f.newPoller(srv.URL+"/dados", time.Second, lock).PollOnce(context.Background()))
	assert.Len(t, f.gateway.ListReadings(context.Background()), 1)
}
