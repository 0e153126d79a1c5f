package transport

import "time"

// track is the position tracker loop, started by Play and superseded by the
// next Play after a Stop. limit is the scaled duration captured when
// playback started; a tempo change during playback does not move it.
func (c *Controller) track(done chan struct{}, interval time.Duration, limit time.Duration) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if !c.tick(limit) {
			return
		}
	}
}

// tick advances the position once. It reports false when tracking should
// end, either because Stop cleared the playing flag or because the end of
// the track was reached.
func (c *Controller) tick(limit time.Duration) bool {
	c.mu.Lock()
	if !c.st.playing {
		// Cooperative cancellation: Stop flipped the flag, exit promptly.
		c.mu.Unlock()
		return false
	}
	if c.st.paused {
		c.mu.Unlock()
		return true
	}

	elapsed := c.now().Sub(c.st.refStart)
	if elapsed >= limit {
		// End of track. This is the only transition the tracker performs
		// on its own; the backend is left to run out of audio by itself.
		c.st.position = limit
		c.st.playing = false
		c.st.paused = false
		c.mu.Unlock()

		c.log.Debug("playback finished")
		c.emitState(Playing, Stopped)
		return false
	}

	c.st.position = elapsed
	c.mu.Unlock()

	c.emitPosition(elapsed)
	return true
}
