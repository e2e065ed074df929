package scene

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	stdmath "math"
	"strconv"
	"strings"
)

// Radiance RGBE (.hdr) decoding. Pixels are tone mapped to 8-bit sRGB on
// load since the skybox shader samples an RGBA8 texture.

var errHDRFormat = errors.New("hdr: invalid format")

func init() {
	image.RegisterFormat("hdr", "#?", DecodeHDRImage, DecodeHDRConfig)
}

// DecodeHDRImage decodes a Radiance file with unit exposure.
func DecodeHDRImage(r io.Reader) (image.Image, error) {
	return DecodeHDR(r, 1)
}

func DecodeHDRConfig(r io.Reader) (image.Config, error) {
	br := bufio.NewReader(r)
	w, h, err := readHDRHeader(br)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.RGBAModel, Width: w, Height: h}, nil
}

// DecodeHDR reads a Radiance RGBE image and tone maps it with the Reinhard
// operator scaled by exposure, followed by a 2.2 gamma.
func DecodeHDR(r io.Reader, exposure float64) (*image.RGBA, error) {
	br := bufio.NewReader(r)
	w, h, err := readHDRHeader(br)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	line := make([]byte, w*4)
	for y := 0; y < h; y++ {
		if err := readHDRScanline(br, line); err != nil {
			return nil, fmt.Errorf("hdr: scanline %d: %w", y, err)
		}
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			rgbe := line[x*4 : x*4+4]
			r, g, b := rgbeToFloat(rgbe)
			row[x*4+0] = toneMap(r, exposure)
			row[x*4+1] = toneMap(g, exposure)
			row[x*4+2] = toneMap(b, exposure)
			row[x*4+3] = 255
		}
	}
	return img, nil
}

func readHDRHeader(br *bufio.Reader) (int, int, error) {
	first, err := br.ReadString('\n')
	if err != nil {
		return 0, 0, fmt.Errorf("hdr: read signature: %w", err)
	}
	if !strings.HasPrefix(first, "#?") {
		return 0, 0, errHDRFormat
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return 0, 0, fmt.Errorf("hdr: read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if format, ok := strings.CutPrefix(line, "FORMAT="); ok && format != "32-bit_rle_rgbe" {
			return 0, 0, fmt.Errorf("hdr: unsupported format %q", format)
		}
	}

	res, err := br.ReadString('\n')
	if err != nil {
		return 0, 0, fmt.Errorf("hdr: read resolution: %w", err)
	}
	fields := strings.Fields(res)
	if len(fields) != 4 || fields[0] != "-Y" || fields[2] != "+X" {
		return 0, 0, fmt.Errorf("hdr: unsupported orientation %q", strings.TrimSpace(res))
	}
	h, err := strconv.Atoi(fields[1])
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("hdr: bad height %q", fields[1])
	}
	w, err := strconv.Atoi(fields[3])
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("hdr: bad width %q", fields[3])
	}
	return w, h, nil
}

// readHDRScanline fills line (width*4 bytes) from either the flat or the
// per-channel run-length encoding.
func readHDRScanline(br *bufio.Reader, line []byte) error {
	w := len(line) / 4
	if w < 8 || w > 0x7fff {
		_, err := io.ReadFull(br, line)
		return err
	}

	head, err := br.Peek(4)
	if err != nil {
		return err
	}
	if head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		_, err := io.ReadFull(br, line)
		return err
	}
	if int(head[2])<<8|int(head[3]) != w {
		return fmt.Errorf("%w: scanline width mismatch", errHDRFormat)
	}
	if _, err := br.Discard(4); err != nil {
		return err
	}

	for c := 0; c < 4; c++ {
		for x := 0; x < w; {
			count, err := br.ReadByte()
			if err != nil {
				return err
			}
			if count > 128 {
				run := int(count - 128)
				if x+run > w {
					return fmt.Errorf("%w: run overflows scanline", errHDRFormat)
				}
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				for ; run > 0; run-- {
					line[x*4+c] = v
					x++
				}
				continue
			}
			n := int(count)
			if n == 0 || x+n > w {
				return fmt.Errorf("%w: bad literal length", errHDRFormat)
			}
			for ; n > 0; n-- {
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				line[x*4+c] = v
				x++
			}
		}
	}
	return nil
}

func rgbeToFloat(p []byte) (float64, float64, float64) {
	if p[3] == 0 {
		return 0, 0, 0
	}
	f := stdmath.Ldexp(1, int(p[3])-(128+8))
	return float64(p[0]) * f, float64(p[1]) * f, float64(p[2]) * f
}

func toneMap(v, exposure float64) uint8 {
	v *= exposure
	v = v / (1 + v)
	v = stdmath.Pow(v, 1/2.2)
	return uint8(stdmath.Min(255, stdmath.Round(v*255)))
}
