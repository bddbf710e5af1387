package detect

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// workflowActions returns the action references of every `uses:` step with the
// "@ref" suffix removed, e.g. "treosh/lighthouse-ci-action". Unparsable YAML
// yields nothing; the raw content scan still covers such files.
func workflowActions(content string) []string {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		return nil
	}
	var out []string
	collectUses(&root, &out)
	return out
}

func collectUses(n *yaml.Node, out *[]string) {
	if n == nil {
		return
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Value == "uses" && v.Kind == yaml.ScalarNode {
				ref := v.Value
				if at := strings.IndexByte(ref, '@'); at > 0 {
					ref = ref[:at]
				}
				*out = append(*out, ref)
				continue
			}
			collectUses(v, out)
		}
		return
	}
	for _, c := range n.Content {
		collectUses(c, out)
	}
}
