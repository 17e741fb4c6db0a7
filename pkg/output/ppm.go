package output

import (
	"bufio"
	"fmt"
	"io"
)

// WritePPM writes an RGB pixel buffer as a plain-text (P3) PPM image,
// one "r g b" triple per line in scanline order from the top row.
func WritePPM(w io.Writer, pixels []byte, width, height int) error {
	if err := checkBuffer(pixels, width, height); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", width, height); err != nil {
		return err
	}
	for i := 0; i < len(pixels); i += 3 {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", pixels[i], pixels[i+1], pixels[i+2]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
