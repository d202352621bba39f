package grpchandlers

import "errors"

var ErrNilDependency = errors.New("health dependency is nil")
