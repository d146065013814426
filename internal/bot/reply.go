package bot

// Reply es la respuesta del motor de diálogo a un mensaje: texto plano más
// un teclado de respuesta rápida opcional. El transporte lo traduce al
// formato de Telegram.
type Reply struct {
	Text     string
	Keyboard [][]string
}

func reply(text string, keyboard [][]string) Reply {
	return Reply{Text: text, Keyboard: keyboard}
}
