package state

import (
	"time"

	"storyexp/raster"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:          time.Now(),
		DefaultDivider: []byte(raster.DefaultDivider),
	}
}
