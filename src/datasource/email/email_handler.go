// email_handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"PassengerSatisfaction/src/storage"
)

// ====================== 邮件处理器实现 ======================

// SurveyAttachmentHandler 把问卷附件(.csv/.xlsx)保存到数据目录
type SurveyAttachmentHandler struct {
	TargetSubject string          // 目标邮件主题关键词
	DataDir       string          // 附件保存目录
	processedUIDs map[uint32]bool // 已处理邮件UID记录
	mu            sync.RWMutex    // 保护processedUIDs的读写锁
	logger        *storage.Logger
}

var _ EmailHandler = (*SurveyAttachmentHandler)(nil)

func NewSurveyAttachmentHandler(subject, dataDir string, logger *storage.Logger) *SurveyAttachmentHandler {
	return &SurveyAttachmentHandler{
		TargetSubject: subject,
		DataDir:       dataDir,
		processedUIDs: make(map[uint32]bool),
		logger:        logger,
	}
}

// IsProcessed 检查邮件是否已处理过（线程安全）
func (h *SurveyAttachmentHandler) IsProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

// MarkAsProcessed 标记邮件为已处理（线程安全）
func (h *SurveyAttachmentHandler) MarkAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

// Handle 保存问卷附件，返回保存的文件路径
// 已处理或主题不匹配的邮件返回空列表
func (h *SurveyAttachmentHandler) Handle(email *Email) ([]string, error) {
	if h.IsProcessed(email.UID) {
		return nil, nil
	}
	if !strings.Contains(strings.ToLower(email.Subject), strings.ToLower(h.TargetSubject)) {
		h.info(fmt.Sprintf("跳过主题不匹配的邮件: %s", email.Subject))
		return nil, nil
	}

	h.info(fmt.Sprintf("处理邮件: %s 发件人: %s 日期: %s",
		email.Subject, email.From, email.Date.Format("2006-01-02 15:04:05")))

	if err := os.MkdirAll(h.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}

	var saved []string
	for _, attachment := range email.Attachments {
		if !IsSurveyFile(attachment.Filename) {
			continue
		}
		// 只保留文件名，防止附件名带路径
		filePath := filepath.Join(h.DataDir, filepath.Base(attachment.Filename))
		if err := os.WriteFile(filePath, attachment.Content, 0644); err != nil {
			return saved, fmt.Errorf("保存附件失败: %w", err)
		}
		h.info(fmt.Sprintf("附件已保存到: %s", filePath))
		saved = append(saved, filePath)
	}

	if len(saved) > 0 {
		h.MarkAsProcessed(email.UID)
	}
	return saved, nil
}

func (h *SurveyAttachmentHandler) info(msg string) {
	if h.logger != nil {
		h.logger.Info(msg)
	}
}
