package cmd

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spigell/resume-evaluator/internal/screening"
	"github.com/spigell/resume-evaluator/internal/store"

	"github.com/manifoldco/promptui"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var errAborted = errors.New("aborted by user")

var confirmPrompt = promptui.Select{
	Label: "Procced?",
	Items: []string{PromptYes, PromptNo},
}

func confirm() error {
	_, answer, err := confirmPrompt.Run()
	if err != nil {
		return err
	}
	if answer != PromptYes {
		return errAborted
	}
	return nil
}

// resolveJobDescription returns id when set, otherwise asks the user to pick
// one of the stored job descriptions.
func resolveJobDescription(ctx context.Context, st store.Store, id string) (string, error) {
	if id != "" {
		if _, err := st.GetJobDescription(ctx, id); err != nil {
			return "", fmt.Errorf("job description %s: %w", id, err)
		}
		return id, nil
	}

	jds, err := st.ListJobDescriptions(ctx)
	if err != nil {
		return "", err
	}
	if len(jds) == 0 {
		return "", errors.New("no job descriptions stored yet, add one with 'jd add'")
	}

	items := make([]string, 0, len(jds))
	for _, jd := range jds {
		items = append(items, fmt.Sprintf("%s %s / %s", jd.ID, jd.Role, jd.FileName))
	}

	jdPrompt := promptui.Select{
		Label: "Choose a job description and press ENTER",
		Items: items,
		Size:  10,
	}

	idx, _, err := jdPrompt.Run()
	if err != nil {
		return "", err
	}
	return jds[idx].ID, nil
}

func readUploads(paths []string) ([]screening.Upload, error) {
	uploads := make([]screening.Upload, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		uploads = append(uploads, screening.Upload{
			Name:        filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Content:     content,
		})
	}
	return uploads, nil
}
