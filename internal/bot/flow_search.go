package bot

import "context"

// handleSearch un solo paso: término, resultados y vuelta a reposo.
func (d *Dispatcher) handleSearch(ctx context.Context, sess *Session, text string) Reply {
	if text == "" {
		return reply("Escribe parte del nombre o del código.", cancelKeyboard())
	}
	parts, err := d.stock.SearchParts(ctx, text)
	if err != nil {
		return d.fail(sess, err)
	}
	sess.Reset()
	return reply(formatSearchResults(text, parts), d.menu(sess.UserID))
}
