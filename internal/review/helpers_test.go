package review

import "smoke-annotator/internal/coords"

func screen(x, y float64) coords.ScreenPoint { return coords.ScreenPoint{X: x, Y: y} }
