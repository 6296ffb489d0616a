// Package metrics reports frame statistics to statsd.
// It hides the datadog dependency behind a small set of helpers.
package metrics

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/plus3/voxelvolution/ecs"
)

const namespace = "voxelvolution."

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

// Client returns the process wide statsd client. It is a no-op client until Init succeeds.
func Client() ddstatsd.ClientInterface {
	return client
}

// Init replaces the process wide client with one sending to address.
func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		ddstatsd.WithNamespace(namespace),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return eris.Wrapf(err, "creating statsd client for %s", address)
	}
	client = newClient
	return nil
}

// Observer is an ecs.FrameObserver that reports commit timing, the current frame and newly
// dropped submissions per component type.
type Observer struct {
	client  ddstatsd.ClientInterface
	logger  zerolog.Logger
	dropped map[string]uint64
}

// NewObserver creates an observer. A nil client uses Client().
func NewObserver(c ddstatsd.ClientInterface, logger zerolog.Logger) *Observer {
	if c == nil {
		c = Client()
	}
	return &Observer{
		client:  c,
		logger:  logger,
		dropped: make(map[string]uint64),
	}
}

func (o *Observer) FrameCommitted(report ecs.FrameReport) {
	o.check(o.client.Timing("frame.commit", report.Commit, nil, 1))
	o.check(o.client.Timing("frame.systems", report.Systems, nil, 1))
	o.check(o.client.Gauge("frame.id", float64(report.Frame), nil, 1))

	for _, u := range report.Updates {
		delta := u.Dropped - o.dropped[u.Component]
		o.dropped[u.Component] = u.Dropped
		if delta == 0 {
			continue
		}
		o.check(o.client.Count("update.dropped", int64(delta), []string{"component:" + u.Component}, 1))
	}
}

func (o *Observer) check(err error) {
	if err != nil {
		o.logger.Warn().Err(err).Msg("failed to emit frame stat")
	}
}

// EmitDuration times an arbitrary stage since start.
func EmitDuration(start time.Time, stage string) {
	if err := Client().Timing(stage, time.Since(start), nil, 1); err != nil {
		log.Logger.Warn().Err(err).Str("stage", stage).Msg("failed to emit stat")
	}
}
