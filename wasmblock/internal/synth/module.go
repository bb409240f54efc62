// Package synth builds the guest module that calls block literals the way
// clang-compiled wasm32 code does: by loading the invoke slot out of the
// literal header and issuing call_indirect.
package synth

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Export and import names shared with the host module.
const (
	CopyHelper    = "copy_helper"
	DisposeHelper = "dispose_helper"
	CopyExport    = "copy"
	DisposeExport = "dispose"
	MemoryExport  = "memory"
	TableExport   = "table"
)

// ThunkName is the host import that dispatches arity k.
func ThunkName(k int) string { return fmt.Sprintf("thunk_%d", k) }

// InvokeName is the guest export that calls a literal of arity k.
func InvokeName(k int) string { return fmt.Sprintf("invoke_%d", k) }

// InvokeParams is the core signature of an arity k invoke: the literal
// address followed by k 64-bit argument slots.
func InvokeParams(k int) []api.ValueType {
	params := make([]api.ValueType, 1+k)
	params[0] = api.ValueTypeI32
	for i := 1; i <= k; i++ {
		params[i] = api.ValueTypeI64
	}
	return params
}

// InvokeResults is the single 64-bit result slot of every invoke.
var InvokeResults = []api.ValueType{api.ValueTypeI64}

// CopyParams is (dst, src).
var CopyParams = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}

// DisposeParams is (literal).
var DisposeParams = []api.ValueType{api.ValueTypeI32}

// Offsets are the header and descriptor field offsets the guest loads
// through.
type Offsets struct {
	Invoke     uint32
	Descriptor uint32
	Copy       uint32
	Dispose    uint32
}

// Builder assembles the guest module binary.
type Builder struct {
	hostModule string
	offsets    Offsets
	maxArity   int
	minPages   uint32
	maxPages   uint32
}

// NewBuilder creates a builder importing helpers from hostModule.
func NewBuilder(hostModule string, offsets Offsets) *Builder {
	return &Builder{
		hostModule: hostModule,
		offsets:    offsets,
		maxArity:   6,
		minPages:   1,
		maxPages:   1,
	}
}

// SetMaxArity sets the highest arity with an invoke export.
func (b *Builder) SetMaxArity(n int) {
	b.maxArity = n
}

// SetMemory sets the memory limits in 64KiB pages.
func (b *Builder) SetMemory(minPages, maxPages uint32) {
	b.minPages = minPages
	b.maxPages = maxPages
}

// MaxArity returns the highest supported arity.
func (b *Builder) MaxArity() int { return b.maxArity }

func (b *Builder) importCount() uint32 { return uint32(b.maxArity) + 3 }

func (b *Builder) copyType() uint32    { return uint32(b.maxArity) + 1 }
func (b *Builder) disposeType() uint32 { return uint32(b.maxArity) + 2 }

// Table slot 0 stays null so a zeroed invoke field traps.

// ThunkSlot is the table index holding thunk_k.
func (b *Builder) ThunkSlot(k int) uint32 { return uint32(k) + 1 }

// CopySlot is the table index holding copy_helper.
func (b *Builder) CopySlot() uint32 { return uint32(b.maxArity) + 2 }

// DisposeSlot is the table index holding dispose_helper.
func (b *Builder) DisposeSlot() uint32 { return uint32(b.maxArity) + 3 }

// TableSize is the number of funcref slots.
func (b *Builder) TableSize() uint32 { return b.importCount() + 1 }

// Build emits the module and checks that every section parses and that the
// declared function, import and export counts line up.
func (b *Builder) Build() ([]byte, error) {
	if b.maxArity < 0 {
		return nil, fmt.Errorf("max arity %d is negative", b.maxArity)
	}
	if b.minPages > b.maxPages {
		return nil, fmt.Errorf("memory minimum %d pages exceeds maximum %d", b.minPages, b.maxPages)
	}

	wasm := append([]byte(nil), preamble...)
	wasm = appendSection(wasm, sectionType, b.typeSection())
	wasm = appendSection(wasm, sectionImport, b.importSection())
	wasm = appendSection(wasm, sectionFunc, b.funcSection())
	wasm = appendSection(wasm, sectionTable, b.tableSection())
	wasm = appendSection(wasm, sectionMemory, b.memorySection())
	wasm = appendSection(wasm, sectionExport, b.exportSection())
	wasm = appendSection(wasm, sectionElem, b.elemSection())
	wasm = appendSection(wasm, sectionCode, b.codeSection())

	if err := b.check(wasm); err != nil {
		return nil, fmt.Errorf("guest module: %w", err)
	}
	return wasm, nil
}

func (b *Builder) check(wasm []byte) error {
	sections, err := Sections(wasm)
	if err != nil {
		return err
	}
	funcs := b.importCount()
	want := map[byte]uint32{
		sectionType:   funcs,
		sectionImport: funcs,
		sectionFunc:   funcs,
		sectionExport: funcs + 2,
		sectionCode:   funcs,
	}
	for _, s := range sections {
		n, ok := want[s.ID]
		if !ok {
			continue
		}
		got, err := s.Count()
		if err != nil {
			return err
		}
		if got != n {
			return fmt.Errorf("section %d declares %d entries, want %d", s.ID, got, n)
		}
		delete(want, s.ID)
	}
	for id := range want {
		return fmt.Errorf("section %d missing", id)
	}
	return nil
}

func appendSection(wasm []byte, id byte, body []byte) []byte {
	wasm = append(wasm, id)
	wasm = appendU32(wasm, uint32(len(body)))
	return append(wasm, body...)
}

func appendName(buf []byte, name string) []byte {
	buf = appendU32(buf, uint32(len(name)))
	return append(buf, name...)
}

func appendFuncType(buf []byte, params, results []api.ValueType) []byte {
	buf = append(buf, typeFunc)
	buf = appendU32(buf, uint32(len(params)))
	for _, t := range params {
		buf = append(buf, valType(t))
	}
	buf = appendU32(buf, uint32(len(results)))
	for _, t := range results {
		buf = append(buf, valType(t))
	}
	return buf
}

func appendImport(buf []byte, module, name string, typeIdx uint32) []byte {
	buf = appendName(buf, module)
	buf = appendName(buf, name)
	buf = append(buf, kindFunc)
	return appendU32(buf, typeIdx)
}

func appendExport(buf []byte, name string, kind byte, idx uint32) []byte {
	buf = appendName(buf, name)
	buf = append(buf, kind)
	return appendU32(buf, idx)
}

// One type per invoke arity, then copy and dispose. Imports and guest
// functions share them index for index.
func (b *Builder) typeSection() []byte {
	buf := appendU32(nil, b.importCount())
	for k := 0; k <= b.maxArity; k++ {
		buf = appendFuncType(buf, InvokeParams(k), InvokeResults)
	}
	buf = appendFuncType(buf, CopyParams, nil)
	return appendFuncType(buf, DisposeParams, nil)
}

func (b *Builder) importSection() []byte {
	buf := appendU32(nil, b.importCount())
	for k := 0; k <= b.maxArity; k++ {
		buf = appendImport(buf, b.hostModule, ThunkName(k), uint32(k))
	}
	buf = appendImport(buf, b.hostModule, CopyHelper, b.copyType())
	return appendImport(buf, b.hostModule, DisposeHelper, b.disposeType())
}

func (b *Builder) funcSection() []byte {
	buf := appendU32(nil, b.importCount())
	for t := uint32(0); t < b.importCount(); t++ {
		buf = appendU32(buf, t)
	}
	return buf
}

func (b *Builder) tableSection() []byte {
	buf := appendU32(nil, 1)
	buf = append(buf, refFunc, limitsMax)
	buf = appendU32(buf, b.TableSize())
	return appendU32(buf, b.TableSize())
}

func (b *Builder) memorySection() []byte {
	buf := appendU32(nil, 1)
	buf = append(buf, limitsMax)
	buf = appendU32(buf, b.minPages)
	return appendU32(buf, b.maxPages)
}

func (b *Builder) exportSection() []byte {
	buf := appendU32(nil, b.importCount()+2)
	buf = appendExport(buf, MemoryExport, kindMemory, 0)
	buf = appendExport(buf, TableExport, kindTable, 0)

	first := b.importCount()
	for k := 0; k <= b.maxArity; k++ {
		buf = appendExport(buf, InvokeName(k), kindFunc, first+uint32(k))
	}
	buf = appendExport(buf, CopyExport, kindFunc, first+b.copyType())
	return appendExport(buf, DisposeExport, kindFunc, first+b.disposeType())
}

// Every import lands in the table starting at slot 1.
func (b *Builder) elemSection() []byte {
	buf := appendU32(nil, 1)
	buf = appendU32(buf, 0)
	buf = append(buf, opI32Const)
	buf = appendI32(buf, 1)
	buf = append(buf, opEnd)
	buf = appendU32(buf, b.importCount())
	for i := uint32(0); i < b.importCount(); i++ {
		buf = appendU32(buf, i)
	}
	return buf
}

func (b *Builder) codeSection() []byte {
	buf := appendU32(nil, b.importCount())
	for k := 0; k <= b.maxArity; k++ {
		buf = appendBody(buf, b.invokeBody(k))
	}
	buf = appendBody(buf, b.copyBody())
	return appendBody(buf, b.disposeBody())
}

// appendBody wraps code with an empty locals vector and end.
func appendBody(buf, code []byte) []byte {
	buf = appendU32(buf, uint32(len(code))+2)
	buf = append(buf, 0x00)
	buf = append(buf, code...)
	return append(buf, opEnd)
}

func localGet(code []byte, idx uint32) []byte {
	return appendU32(append(code, opLocalGet), idx)
}

func i32Load(code []byte, offset uint32) []byte {
	return appendU32(append(code, opI32Load, alignWord), offset)
}

func callIndirect(code []byte, typeIdx uint32) []byte {
	code = appendU32(append(code, opCallIndirect), typeIdx)
	return append(code, 0x00)
}

// invoke_k(blk, a1..ak) = blk->invoke(blk, a1..ak)
func (b *Builder) invokeBody(k int) []byte {
	var code []byte
	for i := 0; i <= k; i++ {
		code = localGet(code, uint32(i))
	}
	code = localGet(code, 0)
	code = i32Load(code, b.offsets.Invoke)
	return callIndirect(code, uint32(k))
}

// copy(dst, src) = src->descriptor->copy(dst, src)
func (b *Builder) copyBody() []byte {
	var code []byte
	code = localGet(code, 0)
	code = localGet(code, 1)
	code = localGet(code, 1)
	code = i32Load(code, b.offsets.Descriptor)
	code = i32Load(code, b.offsets.Copy)
	return callIndirect(code, b.copyType())
}

// dispose(blk) = blk->descriptor->dispose(blk)
func (b *Builder) disposeBody() []byte {
	var code []byte
	code = localGet(code, 0)
	code = localGet(code, 0)
	code = i32Load(code, b.offsets.Descriptor)
	code = i32Load(code, b.offsets.Dispose)
	return callIndirect(code, b.disposeType())
}
