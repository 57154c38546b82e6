//go:build !linux

package mpris

import "context"

// Adapter does nothing where MPRIS has no session bus to live on.
type Adapter struct{}

func New(context.Context, Controls) (*Adapter, error) { return &Adapter{}, nil }

func (*Adapter) Close() error { return nil }
