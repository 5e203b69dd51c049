package booking

import (
	"context"
	"time"

	"github.com/example/salon-scheduler/internal/staff"
)

// BufferWindow is the non-bookable margin applied around an appointment when
// scanning for conflicts.
type BufferWindow struct {
	BeforeMinutes int
	AfterMinutes  int
}

// max returns a window taking the larger value of each side.
func (w BufferWindow) max(other BufferWindow) BufferWindow {
	out := w
	if other.BeforeMinutes > out.BeforeMinutes {
		out.BeforeMinutes = other.BeforeMinutes
	}
	if other.AfterMinutes > out.AfterMinutes {
		out.AfterMinutes = other.AfterMinutes
	}
	return out
}

// BufferPolicy resolves the dynamic buffer for an appointment from its
// service, location and time context. Implementations must answer
// synchronously with a usable default; the availability checker never blocks
// on missing policy data.
type BufferPolicy interface {
	GetBufferPolicy(ctx context.Context, service, location string, at time.Time) (BufferWindow, error)
}

// StaticBufferPolicy always returns the same window.
type StaticBufferPolicy struct {
	Window BufferWindow
}

// NewStaticBufferPolicy builds a policy with a fixed window.
func NewStaticBufferPolicy(beforeMinutes, afterMinutes int) *StaticBufferPolicy {
	return &StaticBufferPolicy{Window: BufferWindow{BeforeMinutes: beforeMinutes, AfterMinutes: afterMinutes}}
}

func (p *StaticBufferPolicy) GetBufferPolicy(_ context.Context, _, _ string, _ time.Time) (BufferWindow, error) {
	if p == nil {
		return BufferWindow{}, nil
	}
	return p.Window, nil
}

// RuleBufferPolicy derives buffers from per-service and per-location
// overrides, with an extra margin for home-service appointments to absorb
// travel time. Lookups fall back to the base window.
type RuleBufferPolicy struct {
	Base              BufferWindow
	ServiceOverrides  map[string]BufferWindow
	LocationOverrides map[string]BufferWindow
	HomeTravelMinutes int
}

func (p *RuleBufferPolicy) GetBufferPolicy(_ context.Context, service, location string, _ time.Time) (BufferWindow, error) {
	if p == nil {
		return BufferWindow{}, nil
	}

	window := p.Base
	if override, ok := p.ServiceOverrides[service]; ok {
		window = window.max(override)
	}
	if override, ok := p.LocationOverrides[location]; ok {
		window = window.max(override)
	}
	if location == staff.LocationHome && p.HomeTravelMinutes > 0 {
		window = window.max(BufferWindow{
			BeforeMinutes: p.HomeTravelMinutes,
			AfterMinutes:  p.HomeTravelMinutes,
		})
	}
	return window, nil
}
