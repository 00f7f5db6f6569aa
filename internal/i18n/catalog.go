// Package i18n хранит таблицы переводов интерфейса и язык, выбранный на устройстве.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Поддерживаемые языки.
const (
	English = "en"
	Korean  = "ko"
)

// DefaultLanguage - язык, на который падает поиск при промахе.
const DefaultLanguage = English

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Language string            `yaml:"language"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog - неизменяемая таблица (язык, ключ) -> строка.
type Catalog struct {
	messages map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

// LoadEmbedded загружает каталоги, встроенные в бинарник.
func LoadEmbedded() (*Catalog, error) {
	return LoadFromFS(embeddedLocales)
}

// MustLoadEmbedded - LoadEmbedded для инициализации при старте процесса.
func MustLoadEmbedded() *Catalog {
	c, err := LoadEmbedded()
	if err != nil {
		panic(fmt.Sprintf("i18n: failed to load embedded catalogs: %v", err))
	}
	return c
}

// LoadFromFS загружает каталоги locales/*.yaml из fsys.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	c := &Catalog{messages: make(map[string]map[string]string, len(paths))}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		lang := strings.TrimSpace(file.Language)
		if want := strings.TrimSuffix(path.Base(p), path.Ext(p)); lang != want {
			return nil, fmt.Errorf("catalog %s: language %q must match file name %q", p, lang, want)
		}
		if file.Messages == nil {
			return nil, fmt.Errorf("catalog %s: messages map is required", p)
		}
		c.messages[lang] = file.Messages
	}
	if _, ok := c.messages[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("base language %s is not defined in catalogs", DefaultLanguage)
	}

	// Базовый язык идет первым: matcher возвращает первый тег при отсутствии совпадения.
	c.tags = append(c.tags, language.MustParse(DefaultLanguage))
	for _, lang := range c.Languages() {
		if lang == DefaultLanguage {
			continue
		}
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("parse language tag %q: %w", lang, err)
		}
		c.tags = append(c.tags, tag)
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// T возвращает перевод ключа: сначала на языке lang, затем на английском, затем сам ключ.
func (c *Catalog) T(lang, key string) string {
	if msg, ok := c.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := c.messages[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// Has сообщает, есть ли ключ в базовом каталоге.
func (c *Catalog) Has(key string) bool {
	_, ok := c.messages[DefaultLanguage][key]
	return ok
}

// Messages возвращает копию таблицы языка, дополненную английскими строками для недостающих ключей.
func (c *Catalog) Messages(lang string) map[string]string {
	out := make(map[string]string, len(c.messages[DefaultLanguage]))
	for key, msg := range c.messages[DefaultLanguage] {
		out[key] = msg
	}
	for key, msg := range c.messages[lang] {
		out[key] = msg
	}
	return out
}

// Languages возвращает коды всех загруженных языков по алфавиту.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.messages))
	for lang := range c.messages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Supports сообщает, загружен ли каталог для языка.
func (c *Catalog) Supports(lang string) bool {
	_, ok := c.messages[lang]
	return ok
}

// Resolve приводит произвольный тег (ko-KR, en_US, "Korean" и т.п.) к коду загруженного языка.
// Нераспознанные значения дают DefaultLanguage.
func (c *Catalog) Resolve(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "_", "-"))
	if raw == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return DefaultLanguage
	}
	_, index, confidence := c.matcher.Match(tag)
	if confidence == language.No {
		return DefaultLanguage
	}
	base, _ := c.tags[index].Base()
	return base.String()
}

// Toggle возвращает язык, на который переключает кнопка интерфейса: en <-> ko.
func Toggle(lang string) string {
	if lang == English {
		return Korean
	}
	return English
}
