package bot

import "sync"

// Draft acumula las respuestas parciales de un flujo hasta confirmarlo.
type Draft struct {
	// alta de repuesto
	Name     string
	Code     string
	Quantity int64
	Unit     string

	// edición
	PartID    int64
	PartCode  string
	EditField string
}

// Session es la posición de diálogo de un usuario. El dispatcher garantiza
// que solo una goroutine la toca a la vez (candado por usuario), por lo que
// los flujos la mutan directamente.
type Session struct {
	UserID int64
	Flow   Flow
	Step   Step
	Draft  Draft
	Page   int // cursor del listado de existencias, base 1
}

// Idle indica si el usuario no está dentro de ningún flujo.
func (s *Session) Idle() bool { return s.Flow == FlowIdle }

// Enter arranca un flujo en su primer paso con el borrador limpio.
func (s *Session) Enter(flow Flow, step Step) {
	s.Flow = flow
	s.Step = step
	s.Draft = Draft{}
}

// Reset vuelve a reposo y descarta el borrador. El cursor de página se
// conserva: cancelar un flujo no debe perder la posición del listado.
func (s *Session) Reset() {
	s.Flow = FlowIdle
	s.Step = StepNone
	s.Draft = Draft{}
}

// SessionStore guarda las sesiones vivas. Se pierden al reiniciar.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewSessionStore construye un almacén de sesiones vacío.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// Get devuelve la sesión del usuario, creándola en reposo si no existe.
func (st *SessionStore) Get(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[userID]; ok {
		return s
	}
	s := &Session{UserID: userID, Flow: FlowIdle, Step: StepNone, Page: 1}
	st.sessions[userID] = s
	return s
}

// Clear elimina la sesión del usuario.
func (st *SessionStore) Clear(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}
