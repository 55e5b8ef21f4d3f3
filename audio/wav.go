package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	apperrors "github.com/skillsenselab/murmur/errors"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// DecodeWAV reads a RIFF/WAVE stream and returns a normalized Buffer:
// downmixed to mono and resampled to SampleRate. Supported encodings are
// 16-bit PCM and 32-bit IEEE float.
func DecodeWAV(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.UnsupportedAudio("reading audio stream").WithCause(err)
	}
	return decodeWAVBytes(data)
}

// DecodeWAVFile reads and normalizes a WAV file from disk.
func DecodeWAVFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NotFound("audio file", path).WithCause(err)
	}
	defer f.Close()
	return DecodeWAV(f)
}

func decodeWAVBytes(data []byte) (*Buffer, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, apperrors.UnsupportedAudio("not a RIFF/WAVE stream")
	}

	var (
		format     uint16
		channels   int
		sampleRate int
		bitDepth   int
		haveFmt    bool
		raw        []float32
	)

	// Walk the chunk list. Chunks are word-aligned.
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			return nil, apperrors.UnsupportedAudio("truncated WAV chunk")
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, apperrors.UnsupportedAudio("malformed fmt chunk")
			}
			format = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, apperrors.UnsupportedAudio("data chunk before fmt chunk")
			}
			var err error
			raw, err = decodeSamples(data[body:body+size], format, bitDepth)
			if err != nil {
				return nil, err
			}
		}

		pos = body + size
		if size%2 == 1 {
			pos++ // pad byte
		}
	}

	if raw == nil {
		return nil, apperrors.UnsupportedAudio("missing data chunk")
	}
	if channels < 1 {
		return nil, apperrors.UnsupportedAudio("invalid channel count")
	}

	mono := Downmix(raw, channels)
	return NewBuffer(Resample(mono, sampleRate)), nil
}

func decodeSamples(body []byte, format uint16, bitDepth int) ([]float32, error) {
	switch {
	case format == wavFormatPCM && bitDepth == 16:
		return pcm16ToFloat32(body), nil
	case format == wavFormatFloat && bitDepth == 32:
		return float32Samples(body), nil
	default:
		return nil, apperrors.UnsupportedAudio("unsupported WAV encoding")
	}
}

// EncodeWAV writes the buffer as a mono 16-bit PCM WAV stream at
// SampleRate, the format transcription sidecars expect.
func EncodeWAV(w io.Writer, buf *Buffer) error {
	dataLen := buf.Len() * 2

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], SampleRate)
	binary.LittleEndian.PutUint32(header[28:32], SampleRate*2)
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))

	if _, err := w.Write(header); err != nil {
		return err
	}

	pcm := make([]byte, dataLen)
	for i, s := range buf.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(s*32767)))
	}
	_, err := w.Write(pcm)
	return err
}

func pcm16ToFloat32(buf []byte) []float32 {
	n := len(buf) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		u := binary.LittleEndian.Uint16(buf[2*i:])
		samples[i] = float32(int16(u)) / 32768.0
	}
	return samples
}

func float32Samples(buf []byte) []float32 {
	n := len(buf) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(buf[4*i:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}
