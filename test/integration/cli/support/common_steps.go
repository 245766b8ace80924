package support

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/raster"
	"github.com/MeKo-Tech/seedtrace/internal/testutil"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// RegisterCommonSteps registers file, command and output steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a binary image "([^"]*)" with rows:$`, testCtx.aBinaryImageWithRows)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, testCtx.aFileContaining)
	sc.Step(`^a config file "([^"]*)" with:$`, testCtx.aConfigFileWith)
	sc.Step(`^the environment variable "([^"]*)" is "([^"]*)"$`, testCtx.theEnvironmentVariableIs)

	sc.Step(`^I run "([^"]*)"$`, testCtx.iRun)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the command should fail with a (configuration|bounds|geometry) error$`, testCtx.theCommandShouldFailWithKind)
	sc.Step(`^the error should contain "([^"]*)"$`, testCtx.theErrorShouldContain)

	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the log output should contain "([^"]*)"$`, testCtx.theLogOutputShouldContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON field "([^"]*)" should be (.+)$`, testCtx.theJSONFieldShouldBe)
	sc.Step(`^the JSON array "([^"]*)" should have (\d+) items?$`, testCtx.theJSONArrayShouldHaveItems)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
}

func (testCtx *TestContext) aBinaryImageWithRows(name string, rows *godog.DocString) error {
	img := testutil.ParseGrid(rows.Content)
	if img.Width() == 0 || img.Height() == 0 {
		return errors.New("image has no pixels")
	}
	return imageio.SaveImage(raster.ToImage(img), testCtx.Path(name))
}

func (testCtx *TestContext) aFileContaining(name, content string) error {
	return os.WriteFile(testCtx.Path(name), []byte(content), 0o600)
}

func (testCtx *TestContext) aConfigFileWith(name string, content *godog.DocString) error {
	return os.WriteFile(testCtx.Path(name), []byte(content.Content+"\n"), 0o600)
}

func (testCtx *TestContext) theEnvironmentVariableIs(name, value string) error {
	testCtx.SetEnv(name, value)
	return nil
}

func (testCtx *TestContext) iRun(command string) error {
	testCtx.Run(command)
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("command %q failed: %w\nStderr: %s", testCtx.LastCommand, testCtx.LastError, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastError == nil {
		return fmt.Errorf("command %q succeeded when it should have failed\nOutput: %s", testCtx.LastCommand, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFailWithKind(kind string) error {
	if err := testCtx.theCommandShouldFail(); err != nil {
		return err
	}
	kinds := map[string]error{
		"configuration": trace.ErrConfiguration,
		"bounds":        trace.ErrBounds,
		"geometry":      trace.ErrGeometry,
	}
	if !errors.Is(testCtx.LastError, kinds[kind]) {
		return fmt.Errorf("expected a %s error, got: %w", kind, testCtx.LastError)
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldContain(text string) error {
	if testCtx.LastError == nil {
		return errors.New("no error was returned")
	}
	if !strings.Contains(testCtx.LastError.Error(), text) {
		return fmt.Errorf("error %q does not contain %q", testCtx.LastError, text)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(text string) error {
	if !strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", text, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theLogOutputShouldContain(text string) error {
	if !strings.Contains(testCtx.LastStderr, text) {
		return fmt.Errorf("stderr does not contain '%s'\nActual stderr: %s", text, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) outputJSON() (any, error) {
	var doc any
	if err := json.Unmarshal([]byte(testCtx.LastOutput), &doc); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, testCtx.LastOutput)
	}
	return doc, nil
}

func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	_, err := testCtx.outputJSON()
	return err
}

// lookup follows a dotted path such as "images.0.result.components".
func lookup(doc any, path string) (any, error) {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found in path %q", part, path)
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %q out of range in path %q", part, path)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %T at %q", cur, part)
		}
	}
	return cur, nil
}

func (testCtx *TestContext) theJSONFieldShouldBe(path, expected string) error {
	doc, err := testCtx.outputJSON()
	if err != nil {
		return err
	}
	got, err := lookup(doc, path)
	if err != nil {
		return err
	}
	var want any
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		return fmt.Errorf("expected value %s is not JSON: %w", expected, err)
	}
	if !reflect.DeepEqual(got, want) {
		gotJSON, _ := json.Marshal(got)
		return fmt.Errorf("field %s is %s, want %s", path, gotJSON, expected)
	}
	return nil
}

func (testCtx *TestContext) theJSONArrayShouldHaveItems(path string, n int) error {
	doc, err := testCtx.outputJSON()
	if err != nil {
		return err
	}
	got, err := lookup(doc, path)
	if err != nil {
		return err
	}
	arr, ok := got.([]any)
	if !ok {
		return fmt.Errorf("field %s is %T, not an array", path, got)
	}
	if len(arr) != n {
		return fmt.Errorf("array %s has %d items, want %d", path, len(arr), n)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(name string) error {
	if _, err := os.Stat(testCtx.Path(name)); err != nil {
		return fmt.Errorf("file %s does not exist: %w", name, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(name, text string) error {
	data, err := os.ReadFile(testCtx.Path(name))
	if err != nil {
		return err
	}
	if !strings.Contains(string(data), text) {
		return fmt.Errorf("file %s does not contain %q", name, text)
	}
	return nil
}
