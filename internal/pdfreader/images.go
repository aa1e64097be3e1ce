// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfreader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// ErrUnsupportedImage is returned for images whose encoding this reader
// cannot turn into a standalone file.
var ErrUnsupportedImage = errors.New("unsupported image encoding")

// jp2Signature and j2kSignature open JPEG 2000 files and codestreams.
var (
	jp2Signature = []byte{0x00, 0x00, 0x00, 0x0c, 'j', 'P', ' ', ' '}
	j2kSignature = []byte{0xff, 0x4f, 0xff, 0x51}
)

// imageRefs lists the image XObjects in a page's resources, sorted by name.
func imageRefs(p pdf.Page, index int) []types.ImageRef {
	xobjects := p.Resources().Key("XObject")
	names := xobjects.Keys()
	sort.Strings(names)

	var refs []types.ImageRef
	for _, name := range names {
		if xobjects.Key(name).Key("Subtype").Name() != "Image" {
			continue
		}
		refs = append(refs, types.ImageRef{Page: index, Name: name})
	}
	return refs
}

// filterNames returns the stream's filter chain in application order.
func filterNames(v pdf.Value) []string {
	switch v.Kind() {
	case pdf.Name:
		return []string{v.Name()}
	case pdf.Array:
		names := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			names = append(names, v.Index(i).Name())
		}
		return names
	}
	return nil
}

// colorComponents returns the number of components of an image colour
// space, or 0 when it is not one of the device spaces or an ICC profile
// equivalent to one.
func colorComponents(cs pdf.Value) int {
	name := cs.Name()
	if cs.Kind() == pdf.Array {
		name = cs.Index(0).Name()
		if name == "ICCBased" {
			return int(cs.Index(1).Key("N").Int64())
		}
	}
	switch name {
	case "DeviceGray", "CalGray", "G":
		return 1
	case "DeviceRGB", "CalRGB", "RGB":
		return 3
	case "DeviceCMYK", "CMYK":
		return 4
	}
	return 0
}

// decodeImage turns an image XObject into a file. JPEG and JPEG 2000
// streams are returned as stored; raw 8-bit pixel data is encoded as PNG.
func decodeImage(src []byte, x pdf.Value) (types.RawImage, error) {
	if x.Kind() != pdf.Stream {
		return types.RawImage{}, fmt.Errorf("XObject is %v, not a stream", x.Kind())
	}
	width := int(x.Key("Width").Int64())
	height := int(x.Key("Height").Int64())
	length := int(x.Key("Length").Int64())

	filters := filterNames(x.Key("Filter"))
	last := ""
	if len(filters) > 0 {
		last = filters[len(filters)-1]
	}

	switch last {
	case "DCTDecode", "DCT":
		if len(filters) > 1 {
			return types.RawImage{}, fmt.Errorf("%w: filter chain %v", ErrUnsupportedImage, filters)
		}
		data, err := storedStream(src, x, length)
		if err != nil {
			return types.RawImage{}, err
		}
		if !isJPEG(data, width, height) {
			return types.RawImage{}, fmt.Errorf("stream is not a %dx%d JPEG", width, height)
		}
		return types.RawImage{Format: "jpeg", Data: data}, nil

	case "JPXDecode":
		if len(filters) > 1 {
			return types.RawImage{}, fmt.Errorf("%w: filter chain %v", ErrUnsupportedImage, filters)
		}
		data, err := storedStream(src, x, length)
		if err != nil {
			return types.RawImage{}, err
		}
		if !isJPX(data) {
			return types.RawImage{}, errors.New("stream is not JPEG 2000")
		}
		return types.RawImage{Format: "jpx", Data: data}, nil

	case "", "FlateDecode", "Fl", "ASCII85Decode", "A85":
		if x.Key("ImageMask").Bool() {
			return types.RawImage{}, fmt.Errorf("%w: stencil mask", ErrUnsupportedImage)
		}
		bpc := int(x.Key("BitsPerComponent").Int64())
		comps := colorComponents(x.Key("ColorSpace"))
		rc := x.Reader()
		defer rc.Close()
		pix, err := io.ReadAll(rc)
		if err != nil {
			return types.RawImage{}, fmt.Errorf("reading image stream: %w", err)
		}
		data, err := encodePNG(pix, width, height, comps, bpc)
		if err != nil {
			return types.RawImage{}, err
		}
		return types.RawImage{Format: "png", Data: data}, nil
	}

	return types.RawImage{}, fmt.Errorf("%w: filter %s", ErrUnsupportedImage, last)
}

// encodePNG wraps raw, row-major pixel data in a PNG file.
func encodePNG(pix []byte, width, height, comps, bpc int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if bpc != 8 {
		return nil, fmt.Errorf("%w: %d bits per component", ErrUnsupportedImage, bpc)
	}
	if comps == 0 {
		return nil, fmt.Errorf("%w: colour space", ErrUnsupportedImage)
	}
	if want := width * height * comps; len(pix) < want {
		return nil, fmt.Errorf("image data too short: %d bytes, want %d", len(pix), want)
	}

	rect := image.Rect(0, 0, width, height)
	var img image.Image
	switch comps {
	case 1:
		g := image.NewGray(rect)
		copy(g.Pix, pix)
		img = g
	case 3:
		rgba := image.NewNRGBA(rect)
		for i, j := 0, 0; i < width*height; i, j = i+1, j+3 {
			rgba.Pix[4*i] = pix[j]
			rgba.Pix[4*i+1] = pix[j+1]
			rgba.Pix[4*i+2] = pix[j+2]
			rgba.Pix[4*i+3] = 0xff
		}
		img = rgba
	case 4:
		c := image.NewCMYK(rect)
		copy(c.Pix, pix)
		img = c
	default:
		return nil, fmt.Errorf("%w: %d colour components", ErrUnsupportedImage, comps)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// storedStream returns the bytes of stream x exactly as stored in src. The
// pdf library only exposes streams through its decoders, which do not
// handle image codecs, but it reports the stream's data offset in the
// textual form of the value ("<<...>>@offset").
func storedStream(src []byte, x pdf.Value, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("invalid stream length %d", length)
	}
	desc := x.String()
	at := strings.LastIndexByte(desc, '@')
	if at < 0 {
		return nil, errors.New("stream offset not available")
	}
	off, err := strconv.ParseInt(desc[at+1:], 10, 64)
	if err != nil || off < 0 {
		return nil, fmt.Errorf("invalid stream offset %q", desc[at+1:])
	}
	end := off + int64(length)
	if end > int64(len(src)) {
		return nil, fmt.Errorf("stream at %d with length %d runs past end of file", off, length)
	}
	return src[off:end], nil
}

// isJPEG reports whether b is a JPEG file of the given dimensions.
func isJPEG(b []byte, width, height int) bool {
	if len(b) < 4 || b[0] != 0xff || b[1] != 0xd8 {
		return false
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return false
	}
	return cfg.Width == width && cfg.Height == height
}

func isJPX(b []byte) bool {
	return bytes.HasPrefix(b, jp2Signature) || bytes.HasPrefix(b, j2kSignature)
}
