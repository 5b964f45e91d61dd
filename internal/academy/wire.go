package academy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// lastViewedLayout is the datetime format the academy API stores
const lastViewedLayout = "2006-01-02 15:04:05"

// flexInt accepts a JSON number, a numeric string, or null
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = flexInt(n)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// flexBool decodes the academy's completion flag: "si", 1, "1" and true are true, anything else false
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case bool:
		*f = flexBool(t)
	case float64:
		*f = t == 1
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		*f = s == "si" || s == "1"
	default:
		*f = false
	}
	return nil
}

// envelope carries the status fields every academy response has
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Mensaje string `json:"mensaje"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Mensaje
}

type wireModule struct {
	ID     flexInt `json:"id"`
	Titulo string  `json:"titulo"`
	Orden  flexInt `json:"orden"`
}

type modulesResponse struct {
	Modulos []wireModule `json:"modulos"`
}

type wireClass struct {
	ID          flexInt `json:"id"`
	ModuloID    flexInt `json:"modulo_id"`
	Titulo      string  `json:"titulo"`
	URLVideo    string  `json:"url_video"`
	Orden       flexInt `json:"orden"`
	Descripcion string  `json:"descripcion"`
}

type classesResponse struct {
	Clases []wireClass `json:"clases"`
}

type wireResource struct {
	ID      flexInt `json:"id"`
	ClaseID flexInt `json:"clase_id"`
	URL     string  `json:"url"`
	Titulo  string  `json:"titulo"`
	Tipo    string  `json:"tipo"`
}

type resourcesResponse struct {
	Recursos []wireResource `json:"recursos"`
}

type wireProgress struct {
	ClaseID             flexInt  `json:"clase_id"`
	CursoID             flexInt  `json:"curso_id"`
	Completada          flexBool `json:"completada"`
	TiempoVistoSegundos flexInt  `json:"tiempo_visto_segundos"`
	UltimaVezVisto      string   `json:"ultima_vez_visto"`
}

type progressResponse struct {
	Progreso []wireProgress `json:"progreso"`
}

type emptyResponse struct{}
