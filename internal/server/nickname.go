package server

import "math/rand/v2"

// 昵称词库
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "酷炫的",
		"优雅的", "机智的", "潇洒的", "淡定的", "闪亮的",
	}

	nouns = []string{
		"旅人", "舰长", "领航员", "工程师", "信使",
		"守望者", "探险家", "游侠", "哨兵", "船长",
	}
)

// GenerateNickname 为未报名的连接生成随机昵称
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + nouns[rand.IntN(len(nouns))]
}
