package di

import (
	"context"
	"time"
)

// constructors talking to the network give up after this long
const startupTimeout = time.Minute

func startupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), startupTimeout)
}
