package list

//go:generate mockgen -source=controller.go -destination=mocks/mocks.go -package=mocks Client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"recordsync/internal/platform/metrics"
	"recordsync/internal/records/list/mocks"
	"recordsync/internal/records/models"
	"recordsync/internal/records/nav"
)

// =============================================================================
// List Controller Test Suite
// =============================================================================
// The controller owns the collection snapshot. Tests pin the refresh state
// transitions, refresh-after-delete, and that an overlapping older refresh
// never overwrites a newer one.

type ListControllerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	client    *mocks.MockClient
	navigator *nav.Recorder
	metrics   *metrics.Metrics
}

func TestListControllerSuite(t *testing.T) {
	suite.Run(t, new(ListControllerSuite))
}

func (s *ListControllerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.client = mocks.NewMockClient(s.ctrl)
	s.navigator = &nav.Recorder{}
	s.metrics = metrics.New(prometheus.NewRegistry())
}

func (s *ListControllerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ListControllerSuite) newController(opts ...Option) *Controller {
	opts = append([]Option{WithNavigator(s.navigator), WithMetrics(s.metrics)}, opts...)
	c, err := New(context.Background(), s.client, opts...)
	s.Require().NoError(err)
	c.Wait()
	return c
}

var (
	ada = models.Record{ID: "1", Fields: models.Fields{Name: "Ada", Email: "ada@x.io"}}
	bo  = models.Record{ID: "2", Fields: models.Fields{Name: "Bo", Email: "bo@x.io"}}
)

func transportErr() error {
	return models.NewTransportError("list", 503, "unexpected status 503", nil)
}

// =============================================================================
// Construction
// =============================================================================

func (s *ListControllerSuite) TestNew() {
	s.Run("nil client returns error", func() {
		_, err := New(context.Background(), nil)
		s.Error(err)
		s.Contains(err.Error(), "client is required")
	})

	s.Run("starts loading and refreshes once", func() {
		var seen []models.StatusKind
		var mu sync.Mutex
		s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada, bo}, nil)

		c := s.newController(WithObserver(func(st State) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, st.Status.Kind)
		}))

		st := c.State()
		s.True(st.Status.IsIdle())
		s.True(st.Loaded)
		s.Equal([]models.Record{ada, bo}, st.Snapshot)
		s.Equal([]models.StatusKind{models.StatusLoading, models.StatusIdle}, seen)
	})
}

// =============================================================================
// Refresh
// =============================================================================

func (s *ListControllerSuite) TestRefresh() {
	s.Run("failure on first load leaves an empty snapshot", func() {
		s.client.EXPECT().List(gomock.Any()).Return(nil, transportErr())

		c := s.newController()

		st := c.State()
		s.True(st.Status.IsError())
		s.NotEmpty(st.Status.Message)
		s.False(st.Loaded)
		s.Empty(st.Snapshot)
	})

	s.Run("failure keeps the previous snapshot", func() {
		s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada}, nil)
		c := s.newController()

		s.client.EXPECT().List(gomock.Any()).Return(nil, transportErr())
		err := c.Refresh(context.Background())

		s.ErrorIs(err, models.ErrTransport)
		st := c.State()
		s.True(st.Status.IsError())
		s.True(st.Loaded)
		s.Equal([]models.Record{ada}, st.Snapshot)
	})

	s.Run("success replaces the snapshot wholesale", func() {
		s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada, bo}, nil)
		c := s.newController()

		s.client.EXPECT().List(gomock.Any()).Return([]models.Record{bo}, nil)
		s.Require().NoError(c.Refresh(context.Background()))

		s.Equal([]models.Record{bo}, c.State().Snapshot)
	})

	s.Run("state is a copy", func() {
		s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada}, nil)
		c := s.newController()

		st := c.State()
		st.Snapshot[0].Name = "changed"

		s.Equal("Ada", c.State().Snapshot[0].Name)
	})
}

func (s *ListControllerSuite) TestOnlyLatestRefreshApplies() {
	s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada}, nil)
	c := s.newController()

	started := make(chan struct{})
	release := make(chan struct{})
	s.client.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]models.Record, error) {
		close(started)
		<-release
		return []models.Record{ada}, nil
	})
	s.client.EXPECT().List(gomock.Any()).Return([]models.Record{bo}, nil)

	olderDone := make(chan error, 1)
	go func() { olderDone <- c.Refresh(context.Background()) }()
	<-started

	s.Require().NoError(c.Refresh(context.Background()))
	close(release)
	s.Require().NoError(<-olderDone)

	st := c.State()
	s.True(st.Status.IsIdle())
	s.Equal([]models.Record{bo}, st.Snapshot)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.ListRefreshes.WithLabelValues("stale")))
}

// =============================================================================
// Delete
// =============================================================================

func (s *ListControllerSuite) TestDeleteRecord() {
	s.Run("unconfirmed makes no call", func() {
		s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada}, nil)
		c := s.newController()

		err := c.DeleteRecord(context.Background(), ada.ID, false)

		s.ErrorIs(err, models.ErrNotConfirmed)
		s.Empty(s.navigator.Destinations())
	})

	s.Run("success refreshes then navigates to the list", func() {
		s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada, bo}, nil)
		c := s.newController()

		gomock.InOrder(
			s.client.EXPECT().Remove(gomock.Any(), ada.ID).Return(nil),
			s.client.EXPECT().List(gomock.Any()).Return([]models.Record{bo}, nil),
		)

		s.Require().NoError(c.DeleteRecord(context.Background(), ada.ID, true))

		s.Equal([]models.Record{bo}, c.State().Snapshot)
		last, ok := s.navigator.Last()
		s.True(ok)
		s.Equal(nav.List(), last)
	})

	s.Run("failure leaves the snapshot untouched", func() {
		s.navigator = &nav.Recorder{}
		s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada}, nil)
		c := s.newController()

		s.client.EXPECT().Remove(gomock.Any(), ada.ID).Return(transportErr())

		err := c.DeleteRecord(context.Background(), ada.ID, true)

		s.ErrorIs(err, models.ErrTransport)
		st := c.State()
		s.Equal([]models.Record{ada}, st.Snapshot)
		s.True(st.Status.IsError())
		s.Empty(s.navigator.Destinations())
	})
}

func (s *ListControllerSuite) TestIntentsRunInBackground() {
	s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada, bo}, nil)
	c := s.newController()

	s.client.EXPECT().Remove(gomock.Any(), bo.ID).Return(nil)
	s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada}, nil)

	c.OnDeleteRequested(context.Background(), bo.ID, true)
	c.Wait()

	s.Equal([]models.Record{ada}, c.State().Snapshot)

	s.client.EXPECT().List(gomock.Any()).Return(nil, errors.New("connection reset"))
	c.OnRefreshRequested(context.Background())
	c.Wait()

	st := c.State()
	s.True(st.Status.IsError())
	s.Equal("connection reset", st.Status.Message)
	s.Equal([]models.Record{ada}, st.Snapshot)
}

func (s *ListControllerSuite) TestNavigationIntents() {
	s.client.EXPECT().List(gomock.Any()).Return([]models.Record{ada}, nil)
	c := s.newController()
	ctx := context.Background()

	c.OnCreateRequested(ctx)
	c.OnOpenRequested(ctx, ada.ID)

	s.Equal([]nav.Destination{nav.Create(), nav.Detail(ada.ID)}, s.navigator.Destinations())
	s.Equal([]models.Record{ada}, c.State().Snapshot)
}
