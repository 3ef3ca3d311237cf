package recipe

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotAuthor возвращается при попытке изменить или удалить чужой
// рецепт. Отображается в 403, не в 404: рецепт существует.
var ErrNotAuthor = errors.New("only author can modify recipe")

// ValidationError накапливает все ошибки валидации payload
// в виде карты "поле -> сообщение".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
