// Package camera maps the perception field onto a screen panel with pan and
// zoom.
package camera

// Camera controls the view of the field inside one screen panel.
// Unlike a world camera it never wraps: the view is clamped to the field.
type Camera struct {
	// Position is the view center in field coordinates
	X, Y float32

	// Zoom is screen pixels per field cell
	Zoom float32

	// Panel placement on screen
	ViewportX, ViewportY float32
	ViewportW, ViewportH float32

	// Field dimensions in cells
	WorldW, WorldH float32

	// Zoom constraints; MinZoom fits the whole field in the panel
	MinZoom, MaxZoom float32
}

// New creates a camera that shows the whole field in the given panel.
func New(panelX, panelY, panelW, panelH, worldW, worldH float32) *Camera {
	c := &Camera{
		ViewportX: panelX,
		ViewportY: panelY,
		WorldW:    worldW,
		WorldH:    worldH,
	}
	c.Resize(panelW, panelH)
	c.Reset()
	return c
}

// WorldToScreen converts field coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportX + c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportY + c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to field coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportX-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportY-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// Contains reports whether a screen point lies inside the panel.
func (c *Camera) Contains(sx, sy float32) bool {
	return sx >= c.ViewportX && sx < c.ViewportX+c.ViewportW &&
		sy >= c.ViewportY && sy < c.ViewportY+c.ViewportH
}

// IsVisible returns true if a circle at (wx, wy) with the given radius
// (in cells) could be visible in the panel.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX &&
		wy+radius >= minY && wy-radius <= maxY
}

// Resize updates the panel size and recalculates the zoom constraints.
func (c *Camera) Resize(panelW, panelH float32) {
	c.ViewportW = panelW
	c.ViewportH = panelH
	c.MinZoom = min(panelW/c.WorldW, panelH/c.WorldH)
	c.MaxZoom = max(c.MinZoom*16, 1)
	c.SetZoom(c.Zoom)
}

// Move places the panel at a new screen origin.
func (c *Camera) Move(panelX, panelY float32) {
	c.ViewportX = panelX
	c.ViewportY = panelY
}

// Pan moves the view by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor keeping the field point under (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.Zoom = clamp(c.Zoom*factor, c.MinZoom, c.MaxZoom)
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X += wx - nx
	c.Y += wy - ny
	c.clampCenter()
}

// Reset shows the whole field.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

// VisibleWorldBounds returns the field-coordinate bounds of the panel,
// clipped to the field.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = max(c.X-halfW, 0)
	maxX = min(c.X+halfW, c.WorldW)
	minY = max(c.Y-halfH, 0)
	maxY = min(c.Y+halfH, c.WorldH)
	return
}

// clampCenter keeps the view inside the field. When the field is smaller
// than the panel on an axis it stays centered on that axis.
func (c *Camera) clampCenter() {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	if halfW*2 >= c.WorldW {
		c.X = c.WorldW / 2
	} else {
		c.X = clamp(c.X, halfW, c.WorldW-halfW)
	}
	if halfH*2 >= c.WorldH {
		c.Y = c.WorldH / 2
	} else {
		c.Y = clamp(c.Y, halfH, c.WorldH-halfH)
	}
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Follow copies o's center and zoom, clamped to this camera's panel.
func (c *Camera) Follow(o *Camera) {
	c.X = o.X
	c.Y = o.Y
	c.SetZoom(o.Zoom)
}
