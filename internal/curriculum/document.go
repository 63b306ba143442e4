package curriculum

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"KeikoHub/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Entry is one key under a position. A plain entry holds its techniques directly;
// a compound entry (weapons such as Tanto dori) holds attacks, each with techniques.
type Entry struct {
	Key        string
	Techniques []string
	Attacks    []SubAttack
	compound   bool
}

type SubAttack struct {
	Name       string
	Techniques []string
}

func (e Entry) Compound() bool {
	return e.compound
}

type positionBlock struct {
	Label   string
	Entries []Entry
}

type Grade struct {
	Name      string
	positions map[entity.Position]*positionBlock
}

var errEmptyDocument = errors.New("empty nomenclature document")

// parseNomenclature walks the document as yaml nodes so key order survives; JSON
// documents parse the same way since YAML is a superset of JSON.
func parseNomenclature(data []byte, log *logrus.Logger) ([]*Grade, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing nomenclature: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, errEmptyDocument
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing nomenclature: root must be a mapping, got %s", kindName(root.Kind))
	}

	grades := make([]*Grade, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := strings.TrimSpace(root.Content[i].Value)
		body := root.Content[i+1]
		if name == "" {
			continue
		}
		if body.Kind != yaml.MappingNode {
			log.WithFields(logrus.Fields{
				"grade": name,
				"kind":  kindName(body.Kind),
			}).Warn("Skipping grade with malformed body")
			continue
		}
		grades = append(grades, parseGrade(name, body, log))
	}

	return grades, nil
}

func parseGrade(name string, body *yaml.Node, log *logrus.Logger) *Grade {
	grade := &Grade{
		Name:      name,
		positions: make(map[entity.Position]*positionBlock),
	}

	for i := 0; i+1 < len(body.Content); i += 2 {
		label := body.Content[i].Value
		value := body.Content[i+1]

		position, ok := ParsePosition(label)
		if !ok {
			log.WithFields(logrus.Fields{
				"grade": name,
				"label": label,
			}).Warn("Skipping unknown position label")
			continue
		}
		if value.Kind != yaml.MappingNode {
			log.WithFields(logrus.Fields{
				"grade": name,
				"label": label,
			}).Warn("Skipping position with malformed attacks")
			continue
		}

		block, exists := grade.positions[position]
		if !exists {
			block = &positionBlock{Label: label}
			grade.positions[position] = block
		}
		block.Entries = appendEntries(block.Entries, value, name, log)
	}

	return grade
}

func appendEntries(entries []Entry, node *yaml.Node, grade string, log *logrus.Logger) []Entry {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.Key] = struct{}{}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.TrimSpace(node.Content[i].Value)
		value := node.Content[i+1]
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}

		var entry Entry
		switch value.Kind {
		case yaml.SequenceNode:
			entry = Entry{Key: key, Techniques: scalarList(value)}
		case yaml.MappingNode:
			entry = Entry{Key: key, compound: true}
			for j := 0; j+1 < len(value.Content); j += 2 {
				attack := strings.TrimSpace(value.Content[j].Value)
				if attack == "" || value.Content[j+1].Kind != yaml.SequenceNode {
					continue
				}
				entry.Attacks = append(entry.Attacks, SubAttack{
					Name:       attack,
					Techniques: scalarList(value.Content[j+1]),
				})
			}
		case yaml.ScalarNode:
			// null or "" behaves as an empty technique list
			if value.ShortTag() != "!!null" && strings.TrimSpace(value.Value) != "" {
				log.WithFields(logrus.Fields{
					"grade": grade,
					"key":   key,
				}).Warn("Skipping entry with scalar value")
				continue
			}
			entry = Entry{Key: key}
		default:
			continue
		}

		seen[key] = struct{}{}
		entries = append(entries, entry)
	}

	return entries
}

func scalarList(node *yaml.Node) []string {
	out := make([]string, 0, len(node.Content))
	seen := make(map[string]struct{}, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			continue
		}
		v := strings.TrimSpace(item.Value)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func parseVideos(path string, data []byte) (map[string][]string, error) {
	videos := make(map[string][]string)
	if len(strings.TrimSpace(string(data))) == 0 {
		return videos, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &videos); err != nil {
			return nil, fmt.Errorf("parsing videos: %w", err)
		}
	default:
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &videos); err != nil {
			return nil, fmt.Errorf("parsing videos: %w", err)
		}
	}

	return videos, nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
