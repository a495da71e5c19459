package arena

import "github.com/sirupsen/logrus"

var log logrus.FieldLogger = logrus.StandardLogger().WithField("prefix", "arena")

// Option configures an Arena at construction time.
type Option func(*arenaOptions)

type arenaOptions struct {
	src Source
	log logrus.FieldLogger
}

func defaultArenaOptions() *arenaOptions {
	return &arenaOptions{
		src: HeapSource{},
		log: log,
	}
}

// WithSource makes the arena reserve its chunks from src.
func WithSource(src Source) Option {
	return func(o *arenaOptions) {
		if src != nil {
			o.src = src
		}
	}
}

// WithLogger sets the logger used for chunk growth and teardown events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *arenaOptions) {
		if l != nil {
			o.log = l
		}
	}
}
