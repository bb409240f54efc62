package abi

import "sync/atomic"

// refcountOne is one logical reference in the flags word.
const refcountOne Flags = 2

// Refcount returns the logical reference count held in f.
func Refcount(f Flags) int {
	return int(f&FlagRefcountMask) >> 1
}

// WithRefcount replaces the refcount bits of f with n logical references.
func WithRefcount(f Flags, n int) Flags {
	return f&^FlagRefcountMask | Flags(n<<1)&FlagRefcountMask
}

// Latched reports whether the refcount saturated. Latched literals are never
// freed.
func Latched(f Flags) bool {
	return f&FlagRefcountMask == FlagRefcountMask
}

// Outcome describes the effect of a release.
type Outcome uint8

const (
	Decremented Outcome = iota
	LastReference
	Saturated
	Underflow
)

func (o Outcome) String() string {
	switch o {
	case Decremented:
		return "decremented"
	case LastReference:
		return "last_reference"
	case Saturated:
		return "saturated"
	case Underflow:
		return "underflow"
	default:
		return "unknown"
	}
}

// Retain returns f with one more reference. The count latches at the mask.
func Retain(f Flags) Flags {
	if Latched(f) {
		return f
	}
	return f + refcountOne
}

// Release returns f with one reference removed. Dropping the last reference
// sets FlagDeallocating.
func Release(f Flags) (Flags, Outcome) {
	switch f & FlagRefcountMask {
	case FlagRefcountMask:
		return f, Saturated
	case 0:
		return f, Underflow
	case refcountOne:
		return f&^FlagRefcountMask | FlagDeallocating, LastReference
	default:
		return f - refcountOne, Decremented
	}
}

// LoadFlags atomically loads the flags word.
func (h *Header) LoadFlags() Flags {
	return Flags(atomic.LoadInt32((*int32)(&h.Flags)))
}

// StoreFlags atomically stores the flags word.
func (h *Header) StoreFlags(f Flags) {
	atomic.StoreInt32((*int32)(&h.Flags), int32(f))
}

// Retain atomically adds a reference and returns the new flags.
func (h *Header) Retain() Flags {
	for {
		old := h.LoadFlags()
		next := Retain(old)
		if next == old || atomic.CompareAndSwapInt32((*int32)(&h.Flags), int32(old), int32(next)) {
			return next
		}
	}
}

// Release atomically removes a reference.
func (h *Header) Release() Outcome {
	for {
		old := h.LoadFlags()
		next, out := Release(old)
		if next == old {
			return out
		}
		if atomic.CompareAndSwapInt32((*int32)(&h.Flags), int32(old), int32(next)) {
			return out
		}
	}
}
