package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"gopkg.in/yaml.v3"

	promptgen "github.com/goliatone/go-promptgen"
	pkgprompt "github.com/goliatone/go-promptgen/pkg/prompt"
)

func main() {
	templatePath := flag.String("template", "", "template path or URL")
	varsJSON := flag.String("vars", "", "variable bindings as a JSON object")
	varsFile := flag.String("vars-file", "", "YAML or JSON file with variable bindings")
	section := flag.String("section", "", "print a captured section instead of the primary output")
	meta := flag.Bool("meta", false, "print the full result (text, sections, constraints) as JSON")
	interactive := flag.Bool("interactive", false, "prompt for missing required variables")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	if *templatePath == "" {
		log.Fatal("-template is required")
	}

	ctx := context.Background()

	src := parseSource(*templatePath)
	if src == nil {
		log.Fatalf("invalid template source: %q", *templatePath)
	}

	loader := promptgen.NewLoader(pkgprompt.WithHTTPFallback(true))
	tpl, err := loader.Load(ctx, src)
	if err != nil {
		log.Fatalf("Failed to load template: %v", err)
	}

	vars, err := collectVars(*varsJSON, *varsFile)
	if err != nil {
		log.Fatalf("Failed to read variables: %v", err)
	}
	if *interactive {
		if err := askMissing(tpl, vars); err != nil {
			log.Fatalf("Failed to collect variables: %v", err)
		}
	}

	resolved, err := tpl.ResolveVariables(vars)
	if err != nil {
		log.Fatalf("Failed to resolve variables: %v", err)
	}

	res, err := promptgen.NewEngine().RenderWithMeta(tpl.Content, resolved)
	if err != nil {
		log.Fatalf("Failed to render template: %v", err)
	}

	text, err := selectOutput(res, *section, *meta)
	if err != nil {
		log.Fatal(err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(text), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Prompt written to %s\n", *output)
	} else {
		fmt.Println(text)
	}
}

func parseSource(raw string) pkgprompt.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return pkgprompt.SourceFromURL(path)
	}
	return pkgprompt.SourceFromFile(path)
}

func collectVars(varsJSON, varsFile string) (map[string]any, error) {
	vars := map[string]any{}
	if varsFile != "" {
		data, err := os.ReadFile(varsFile)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &vars); err != nil {
			return nil, fmt.Errorf("parse %s: %w", varsFile, err)
		}
	}
	if varsJSON != "" {
		inline := map[string]any{}
		if err := json.Unmarshal([]byte(varsJSON), &inline); err != nil {
			return nil, fmt.Errorf("parse -vars: %w", err)
		}
		for k, v := range inline {
			vars[k] = v
		}
	}
	return vars, nil
}

// askMissing prompts for required variables the caller did not bind. Answers
// are coerced per the declared type; array and object declarations accept
// JSON.
func askMissing(tpl pkgprompt.Template, vars map[string]any) error {
	for _, def := range tpl.Variables {
		if !def.Required {
			continue
		}
		if _, ok := vars[def.Name]; ok {
			continue
		}

		message := def.Name
		if def.Description != "" {
			message = fmt.Sprintf("%s (%s)", def.Name, def.Description)
		}

		if def.Type == pkgprompt.TypeBoolean {
			var answer bool
			if err := survey.AskOne(&survey.Confirm{Message: message}, &answer); err != nil {
				return err
			}
			vars[def.Name] = answer
			continue
		}

		var answer string
		if err := survey.AskOne(&survey.Input{Message: message}, &answer, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		value, err := coerceAnswer(def.Type, answer)
		if err != nil {
			return fmt.Errorf("variable %q: %w", def.Name, err)
		}
		vars[def.Name] = value
	}
	return nil
}

func coerceAnswer(varType pkgprompt.VarType, answer string) (any, error) {
	switch varType {
	case pkgprompt.TypeNumber:
		return strconv.ParseFloat(strings.TrimSpace(answer), 64)
	case pkgprompt.TypeArray, pkgprompt.TypeObject:
		var value any
		if err := json.Unmarshal([]byte(answer), &value); err != nil {
			return nil, fmt.Errorf("expected JSON: %w", err)
		}
		return value, nil
	default:
		return answer, nil
	}
}

func selectOutput(res promptgen.Result, section string, meta bool) (string, error) {
	if meta {
		payload, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal result: %w", err)
		}
		return string(payload), nil
	}
	if section != "" {
		text, ok := res.Sections[section]
		if !ok {
			return "", fmt.Errorf("template captured no section %q", section)
		}
		return text, nil
	}
	return res.Text, nil
}
