//go:build linux && cgo

package concurrent

/*
#include <stdint.h>

static inline void sfence_impl(void) {
    __asm__ __volatile__("sfence" ::: "memory");
}
*/
import "C"

// storeFence issues an x86 SFENCE so the SPSCRing's slot write is
// globally visible before the tail store that publishes it. On the
// io_uring submission path this was required because the kernel reads
// memory the CPU's own store buffer might not have flushed yet; here it
// serves the same role for a ring shared across goroutines pinned to
// different CPUs.
func storeFence() {
	C.sfence_impl()
}
