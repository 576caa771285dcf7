package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/teodor/go-dotmatrix/dotmatrix/video"
)

// SaveFrameGrayPNG saves a framebuffer as a grayscale PNG.
func SaveFrameGrayPNG(frame *video.FrameBuffer, path string) error {
	img := image.NewGray(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			shade := frame.GetPixel(x, y)
			img.SetGray(x, y, color.Gray{Y: 255 - shade*85})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// shadeChars maps a 2-bit shade to a block character, lightest first.
var shadeChars = []rune{' ', '░', '▒', '█'}

// RenderFrameText converts a framebuffer to one text line per two pixel
// rows using shade characters (the darker pixel of each vertical pair
// decides the character), handy for logging frames in a terminal.
func RenderFrameText(frame *video.FrameBuffer) []string {
	lines := make([]string, 0, video.FramebufferHeight/2)
	for y := 0; y < video.FramebufferHeight; y += 2 {
		row := make([]rune, video.FramebufferWidth)
		for x := 0; x < video.FramebufferWidth; x++ {
			top := frame.GetPixel(x, y)
			bottom := frame.GetPixel(x, y+1)
			// Favor the darker of the pixel pair
			shade := top
			if bottom > shade {
				shade = bottom
			}
			row[x] = shadeChars[shade]
		}
		lines = append(lines, string(row))
	}
	return lines
}
