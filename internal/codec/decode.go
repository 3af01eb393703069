package codec

import "fmt"

// DecodeStrip reverses one of the RAW/LZW/PackBits/Zip subcodec
// encoders, returning row-major samples. JPEG/PNG go through
// DecodeJPEG/DecodePNG instead since they carry their own container.
func DecodeStrip(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatRaw:
		return data, nil
	case FormatLZW:
		return LZWDecode(data)
	case FormatPackBits:
		return PackBitsDecode(data)
	case FormatZip:
		return ZipDecode(data)
	default:
		return nil, fmt.Errorf("codec: %s is not a strip subcodec", format)
	}
}
