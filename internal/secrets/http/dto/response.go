// Package dto defines HTTP response shapes for node secret endpoints.
package dto

// NodeSecretsResponse carries the ordered secrets for one node, oldest
// first. Tokens signed with any listed secret remain verifiable; new
// tokens should use the last entry.
type NodeSecretsResponse struct {
	Node    string   `json:"node"`
	Count   int      `json:"count"`
	Secrets []string `json:"secrets"`
}

// NodeListResponse enumerates the known node identifiers.
type NodeListResponse struct {
	Count int      `json:"count"`
	Nodes []string `json:"nodes"`
}

// MapNodeSecrets builds a NodeSecretsResponse.
func MapNodeSecrets(node string, secrets []string) NodeSecretsResponse {
	return NodeSecretsResponse{
		Node:    node,
		Count:   len(secrets),
		Secrets: secrets,
	}
}

// MapNodeList builds a NodeListResponse.
func MapNodeList(nodes []string) NodeListResponse {
	return NodeListResponse{
		Count: len(nodes),
		Nodes: nodes,
	}
}
