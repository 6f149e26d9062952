package compress

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses snapshot payloads with the LZ4 block format.
//
// The raw block format records neither the decompressed size nor whether the
// block shrank at all, so each payload is framed with a uvarint header:
// the original length shifted left once, with bit 0 set when the data was
// stored raw because LZ4 could not shrink it.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using a pooled lz4.Compressor.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, binary.MaxVarintLen64+lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	header := uint64(len(data)) << 1
	n, err := lc.CompressBlock(data, dst[binary.MaxVarintLen64:])
	if err != nil {
		return nil, err
	}

	if n == 0 {
		// Incompressible input; CompressBlock wrote nothing. Store raw.
		header |= 1
		n = copy(dst[binary.MaxVarintLen64:], data)
	}

	// The uvarint header is written right-aligned against the payload so the
	// result stays a single contiguous slice.
	headerLen := binary.PutUvarint(dst, header)
	start := binary.MaxVarintLen64 - headerLen
	copy(dst[start:], dst[:headerLen])

	return dst[start : binary.MaxVarintLen64+n], nil
}

// Decompress decompresses a framed LZ4 block.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	header, headerLen := binary.Uvarint(data)
	if headerLen <= 0 {
		return nil, fmt.Errorf("lz4: invalid block header")
	}

	body := data[headerLen:]
	size := header >> 1

	// Cap the stated size so a corrupted header cannot trigger a huge
	// allocation before UncompressBlock gets a chance to reject the body.
	const maxSize = 128 * 1024 * 1024
	if size > maxSize {
		return nil, fmt.Errorf("lz4: block header states %d bytes, max %d", size, maxSize)
	}

	if header&1 != 0 {
		if uint64(len(body)) != size {
			return nil, fmt.Errorf("lz4: raw block of %d bytes, header says %d", len(body), size)
		}
		out := make([]byte, size)
		copy(out, body)

		return out, nil
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(body, buf)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}
