// Package dictionary loads surname reading overrides used by the pinyin provider.
//
// Many common surnames are polyphonic characters whose dictionary reading
// differs from the reading used for family names (单 is "dan" in words but
// "shan" as a surname). An override maps the first character of a name to the
// syllable that should be used when that character starts a name.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// Overrides maps a surname character to its surname reading.
type Overrides map[rune]string

// DefaultSurnames returns the builtin polyphonic surname readings.
func DefaultSurnames() Overrides {
	return Overrides{
		'单': "shan",
		'曾': "zeng",
		'解': "xie",
		'仇': "qiu",
		'朴': "piao",
		'区': "ou",
		'查': "zha",
		'盖': "ge",
		'尉': "yu",
		'乐': "yue",
		'万': "wan",
		'缪': "miao",
		'翟': "zhai",
		'覃': "qin",
		'秘': "bi",
		'繁': "po",
		'种': "chong",
		'黑': "he",
		'任': "ren",
		'沈': "shen",
		'长': "chang",
		'重': "chong",
		'朝': "chao",
		'贾': "jia",
		'都': "du",
		'薄': "bo",
		'折': "she",
		'员': "yun",
		'能': "nai",
		'纪': "ji",
		'华': "hua",
		'宁': "ning",
		'藏': "zang",
		'阚': "kan",
		'句': "gou",
		'率': "shuai",
		'隗': "wei",
		'过': "guo",
	}
}

// Merge copies other into o, other wins on conflicts.
func (o Overrides) Merge(other Overrides) {
	for r, syllable := range other {
		o[r] = syllable
	}
}

// LoadOverrides reads an override file.
func LoadOverrides(path string) (Overrides, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open surname file %s: %w", path, err)
	}
	defer file.Close()

	overrides, err := ParseOverrides(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse surname file %s: %w", path, err)
	}
	log.Debugf("Loaded %d surname overrides from %s", len(overrides), path)
	return overrides, nil
}

// ParseOverrides reads "<hanzi> <syllable>" lines. Blank lines and lines
// starting with '#' are ignored; malformed lines are skipped with a warning.
func ParseOverrides(r io.Reader) (Overrides, error) {
	overrides := make(Overrides)
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 || utf8.RuneCountInString(fields[0]) != 1 {
			log.Warnf("Skipping malformed surname line %d: %q", lineNo, line)
			continue
		}

		r, _ := utf8.DecodeRuneInString(fields[0])
		overrides[r] = strings.ToLower(fields[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return overrides, nil
}
