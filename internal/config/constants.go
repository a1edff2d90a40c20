// Package config holds lumo's compile-time constants (spec.md §6, §9) and
// the optional lumo.yaml project file that can extend them.
package config

// Bytes is the uniform word size: every array element, dict field, and
// container header occupies exactly this many bytes (spec.md §4.3, §6).
const Bytes = 4

// MemoryPages is the number of 64KiB pages the emitted module declares for
// its linear memory (spec.md §6's emitted module shape: `(memory $mem 64)`).
const MemoryPages = 64

// IsTestMode mirrors the teacher's test-mode switch: when true,
// diagnostics.Render never colors its output, so rendered messages do not
// depend on whether the writer is a terminal.
var IsTestMode = false
