package datfile

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"fileset/internal/catalog"
	"fileset/internal/faults"
	"fileset/internal/logging"
)

type token struct {
	text   string
	quoted bool
}

func (t token) is(word string) bool {
	return !t.quoted && t.text == word
}

// lexLine splits a block-dialect line into bare words and quoted strings.
// An unterminated quote runs to the end of the line.
func lexLine(line string) []token {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '"':
			end := strings.IndexByte(line[i+1:], '"')
			if end < 0 {
				toks = append(toks, token{text: line[i+1:], quoted: true})
				return toks
			}
			toks = append(toks, token{text: line[i+1 : i+1+end], quoted: true})
			i += end + 2
		default:
			start := i
			for i < len(line) && line[i] != ' ' && line[i] != '\t' && line[i] != '\r' && line[i] != '\n' && line[i] != '"' {
				i++
			}
			toks = append(toks, token{text: line[start:i]})
		}
	}
	return toks
}

func tokenValue(toks []token) string {
	if len(toks) == 0 {
		return ""
	}
	if toks[0].quoted {
		return toks[0].text
	}
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		parts = append(parts, t.text)
	}
	return strings.Join(parts, " ")
}

type blockKind int

const (
	blockHeader blockKind = iota
	blockSet
)

func (k blockKind) String() string {
	if k == blockHeader {
		return "clrmamepro"
	}
	return "game"
}

type blockParser struct {
	ctx          context.Context
	w            catalog.Writer
	logger       *slog.Logger
	scanner      *bufio.Scanner
	source       string
	root         string
	fallbackName string
	line         int

	collectionID   int64
	haveCollection bool
	result         *Result
}

func (p *blockParser) next() (string, bool) {
	if !p.scanner.Scan() {
		return "", false
	}
	p.line++
	return p.scanner.Text(), true
}

func (p *blockParser) run() error {
	for {
		line, ok := p.next()
		if !ok {
			break
		}
		if err := p.ctx.Err(); err != nil {
			return err
		}
		toks := lexLine(line)
		if len(toks) == 0 {
			continue
		}
		var err error
		switch {
		case toks[0].is("clrmamepro"):
			err = p.readBlock(blockHeader, toks)
		case toks[0].is("game"), toks[0].is("resource"), toks[0].is("machine"):
			err = p.readBlock(blockSet, toks)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	if err := p.scanner.Err(); err != nil {
		return faults.Structural(faults.Wrap(faults.ErrCatalogParse, "datfile", "read", p.source, err))
	}
	return nil
}

func (p *blockParser) structural(format string, args ...any) error {
	msg := fmt.Sprintf("%s line %d: %s", p.source, p.line, fmt.Sprintf(format, args...))
	return faults.Structural(faults.Wrap(faults.ErrCatalogParse, "datfile", "block", msg, nil))
}

func (p *blockParser) readBlock(kind blockKind, opener []token) error {
	start := p.line
	if len(opener) < 2 || !opener[1].is("(") {
		line, ok := p.next()
		if !ok || strings.TrimSpace(line) != "(" {
			return p.structural("%s block opened at line %d without '('", kind, start)
		}
	}

	tags := map[string]string{}
	var pending []int64
	for {
		line, ok := p.next()
		if !ok {
			return p.structural("unterminated %s block opened at line %d", kind, start)
		}
		if strings.TrimSpace(line) == ")" {
			break
		}
		toks := lexLine(line)
		if len(toks) == 0 {
			continue
		}
		if toks[0].is("rom") {
			if kind != blockSet {
				p.logger.Debug("rom outside game block ignored", logging.Int("line", p.line))
				continue
			}
			id, err := p.readRom(toks)
			if err != nil {
				if faults.IsFatal(err) {
					return err
				}
				p.recordError(err)
				continue
			}
			pending = append(pending, id)
			continue
		}
		if len(toks) < 2 {
			continue
		}
		tag := toks[0].text
		if _, seen := tags[tag]; !seen {
			tags[tag] = tokenValue(toks[1:])
		}
	}

	if kind == blockHeader {
		return p.closeHeader(tags)
	}
	return p.closeSet(tags, pending)
}

func (p *blockParser) closeHeader(tags map[string]string) error {
	name := strings.TrimSpace(tags["name"])
	if name == "" {
		name = p.fallbackName
	}
	id, err := p.w.InsertCollection(p.ctx, catalog.Collection{
		Name:        name,
		Root:        p.root,
		Description: tags["description"],
		Version:     tags["version"],
		Comment:     tags["comment"],
		Header:      tags["header"],
	})
	if err != nil {
		return err
	}
	p.collectionID = id
	p.haveCollection = true
	p.result.Collections = append(p.result.Collections, name)
	return nil
}

func (p *blockParser) closeSet(tags map[string]string, pending []int64) error {
	if !p.haveCollection {
		if err := p.closeHeader(map[string]string{}); err != nil {
			return err
		}
	}
	name := tags["name"]
	if strings.TrimSpace(name) == "" {
		logging.WarnWithContext(p.logger, "game block without name", "catalog_record_invalid",
			logging.String(logging.FieldPath, p.source),
			logging.Int("line", p.line),
			logging.String(logging.FieldImpact, "files placed at collection root"),
		)
	}
	setID, err := p.w.InsertSet(p.ctx, catalog.Set{
		CollectionID: p.collectionID,
		Name:         name,
		Description:  tags["description"],
	})
	if err != nil {
		return err
	}
	p.result.Sets++
	return p.w.AssignSet(p.ctx, pending, setID)
}

// readRom parses `rom ( name "x" size 123 crc abcd1234 ... )` and inserts the
// record without a set.
func (p *blockParser) readRom(toks []token) (int64, error) {
	if len(toks) < 2 || !toks[1].is("(") || !toks[len(toks)-1].is(")") {
		return 0, p.structural("malformed rom line")
	}
	body := toks[2 : len(toks)-1]
	if len(body)%2 != 0 {
		return 0, p.recordErr("rom has a tag without a value")
	}

	var (
		rec            catalog.FileRecord
		haveCRC        bool
		haveSize       bool
		romDescription string
	)
	for i := 0; i < len(body); i += 2 {
		key, value := body[i].text, body[i+1].text
		switch key {
		case "name":
			rec.Name = value
		case "size":
			size, err := strconv.ParseInt(value, 10, 64)
			if err != nil || size < 0 {
				return 0, p.recordErr("rom size %q is not a decimal byte count", value)
			}
			rec.Size, haveSize = size, true
		case "crc":
			crc, err := parseHex(value, 32)
			if err != nil {
				return 0, p.recordErr("rom crc %q: %v", value, err)
			}
			rec.CRC32, haveCRC = uint32(crc), true
		case "md5":
			rec.MD5 = strings.ToLower(value)
		case "sha1":
			rec.SHA1 = strings.ToLower(value)
		case "flags", "status":
			rec.Flags = value
		case "comment":
			rec.Comment = value
		case "description":
			romDescription = value
		}
	}
	if rec.Comment == "" {
		rec.Comment = romDescription
	}
	switch {
	case strings.TrimSpace(rec.Name) == "":
		return 0, p.recordErr("rom without name")
	case !haveSize:
		return 0, p.recordErr("rom %q without size", rec.Name)
	case !haveCRC:
		return 0, p.recordErr("rom %q without crc", rec.Name)
	}

	id, err := p.w.InsertFile(p.ctx, rec)
	if err != nil {
		return 0, err
	}
	p.result.Files++
	return id, nil
}

func (p *blockParser) recordErr(format string, args ...any) error {
	msg := fmt.Sprintf("%s line %d: %s", p.source, p.line, fmt.Sprintf(format, args...))
	return faults.Wrap(faults.ErrCatalogParse, "datfile", "rom", msg, nil)
}

func (p *blockParser) recordError(err error) {
	p.result.Skipped++
	logging.WarnWithContext(p.logger, "catalog record skipped", faults.EventType(err),
		logging.String(logging.FieldPath, p.source),
		logging.Int("line", p.line),
		logging.Error(err),
		logging.String(logging.FieldImpact, "record not added to catalog"),
		logging.String(logging.FieldErrorHint, "fix the rom line and re-add the catalog"),
	)
}
