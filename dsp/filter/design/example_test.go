package design_test

import (
	"fmt"

	"github.com/cwbudde/matrixfilter/dsp/filter/design"
)

func ExampleLowpass() {
	c := design.Lowpass(1000, 0.7071067811865476, 48000)

	fmt.Printf("100 Hz:   %.2f dB\n", c.MagnitudeDB(100, 48000))
	fmt.Printf("1000 Hz:  %.2f dB\n", c.MagnitudeDB(1000, 48000))
	// Output:
	// 100 Hz:   -0.00 dB
	// 1000 Hz:  -3.01 dB
}
